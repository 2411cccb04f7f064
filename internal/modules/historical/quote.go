package historical

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
)

// QuoteService resolves the most recent daily candle of a single ticker
type QuoteService struct {
	provider PriceProvider
	log      zerolog.Logger
}

// NewQuoteService creates a new quote service
func NewQuoteService(provider PriceProvider, log zerolog.Logger) *QuoteService {
	return &QuoteService{
		provider: provider,
		log:      log.With().Str("service", "quote").Logger(),
	}
}

// LastQuote returns the latest open/close of ticker.
// A blank ticker or a ticker without recent candles is an input error.
func (s *QuoteService) LastQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	if symbol == "" {
		return nil, domain.NewInputError("Provide a single ticker string.")
	}

	quote, err := s.provider.FetchLastQuote(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNoQuoteData) {
			return nil, domain.NewInputError("No recent price data for %s.", symbol)
		}
		return nil, fmt.Errorf("failed to fetch last quote for %s: %w", symbol, err)
	}

	s.log.Debug().
		Str("ticker", symbol).
		Str("date", quote.LastDate).
		Float64("close", quote.LastClose).
		Msg("Resolved last quote")

	return quote, nil
}
