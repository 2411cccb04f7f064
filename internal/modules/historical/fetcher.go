package historical

import (
	"context"
	"errors"
	"fmt"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultFetchConcurrency bounds simultaneous provider calls
const DefaultFetchConcurrency = 4

// Fetcher retrieves one price series per ticker and assembles the price matrix.
type Fetcher struct {
	provider    PriceProvider
	concurrency int
	log         zerolog.Logger
}

// NewFetcher creates a new fetcher. concurrency <= 0 uses DefaultFetchConcurrency.
func NewFetcher(provider PriceProvider, concurrency int, log zerolog.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = DefaultFetchConcurrency
	}
	return &Fetcher{
		provider:    provider,
		concurrency: concurrency,
		log:         log.With().Str("component", "price_fetcher").Logger(),
	}
}

// FetchPrices calls the provider exactly once per ticker. A failing ticker is skipped and
// reported in PriceMatrix.Skipped; only when every ticker fails is an error returned
// (*domain.DataUnavailableError listing all of them).
// Step traces go to the logger carried by ctx, if any.
func (f *Fetcher) FetchPrices(ctx context.Context, tickers []string, period, interval string) (*PriceMatrix, error) {
	trace := zerolog.Ctx(ctx)
	trace.Info().
		Str("period", period).
		Str("interval", interval).
		Int("tickers", len(tickers)).
		Msg("Fetching prices")

	series := make([][]domain.PricePoint, len(tickers))
	fetchErrs := make([]error, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, ticker := range tickers {
		g.Go(func() error {
			points, err := f.provider.FetchPriceSeries(gctx, ticker, period, interval)
			if err == nil && len(points) == 0 {
				err = errors.New("empty price history")
			}
			if err != nil {
				fetchErrs[i] = err
				f.log.Warn().Err(err).Str("ticker", ticker).Msg("Price fetch failed, skipping ticker")
				return nil
			}
			series[i] = points
			trace.Info().
				Str("ticker", ticker).
				Int("rows", len(points)).
				Time("start", points[0].Date).
				Time("end", points[len(points)-1].Date).
				Msg("Fetched price series")
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("price fetch interrupted: %w", err)
	}

	pm := BuildPriceMatrix(tickers, series)
	if pm.Cols() == 0 {
		return nil, &domain.DataUnavailableError{Failed: pm.Skipped}
	}

	if len(pm.Skipped) > 0 {
		trace.Info().Strs("skipped", pm.Skipped).Msg("Skipped tickers (no data)")
	}
	trace.Info().
		Int("rows", pm.Rows()).
		Int("cols", pm.Cols()).
		Msg("Price matrix ready")

	return pm, nil
}
