package historical

import (
	"context"
	"errors"
	"testing"

	"github.com/aristath/frontier/internal/domain"
	testutil "github.com/aristath/frontier/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastQuote(t *testing.T) {
	country := "United States"
	provider := testutil.NewMockPriceProvider()
	provider.SetQuote("AAPL", &domain.Quote{
		Ticker:    "AAPL",
		Country:   &country,
		LastDate:  "2024-05-31",
		LastOpen:  191.44,
		LastClose: 192.25,
	})
	svc := NewQuoteService(provider, zerolog.Nop())

	tests := []struct {
		name      string
		ticker    string
		wantInput bool
		wantErr   bool
	}{
		{name: "normalizes input", ticker: "  aapl "},
		{name: "blank ticker", ticker: "   ", wantErr: true, wantInput: true},
		{name: "unknown ticker", ticker: "ZZZZ", wantErr: true, wantInput: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := svc.LastQuote(context.Background(), tt.ticker)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantInput, domain.IsInputError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "AAPL", quote.Ticker)
			assert.Equal(t, 192.25, quote.LastClose)
			require.NotNil(t, quote.Country)
			assert.Equal(t, "United States", *quote.Country)
		})
	}
}

func TestLastQuote_UpstreamFailureIsNotInputError(t *testing.T) {
	provider := testutil.NewMockPriceProvider()
	provider.SetQuoteError(errors.New("connection reset"))
	svc := NewQuoteService(provider, zerolog.Nop())

	_, err := svc.LastQuote(context.Background(), "AAPL")

	require.Error(t, err)
	assert.False(t, domain.IsInputError(err))
	assert.Contains(t, err.Error(), "AAPL")
}

func TestLastQuote_NoDataMessage(t *testing.T) {
	svc := NewQuoteService(testutil.NewMockPriceProvider(), zerolog.Nop())

	_, err := svc.LastQuote(context.Background(), "msft")

	require.Error(t, err)
	assert.Equal(t, "No recent price data for MSFT.", err.Error())
}
