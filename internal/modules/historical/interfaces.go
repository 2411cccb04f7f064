// Package historical retrieves price histories from a market data provider and aligns
// them into the price matrix consumed by the optimizer.
package historical

import (
	"context"
	"time"

	"github.com/aristath/frontier/internal/domain"
)

// PriceProvider is the external market data collaborator.
// Implementations must be safe for concurrent use.
type PriceProvider interface {
	// FetchPriceSeries returns adjusted prices in ascending date order
	FetchPriceSeries(ctx context.Context, ticker, period, interval string) ([]domain.PricePoint, error)
	// FetchLastQuote returns the latest daily candle; domain.ErrNoQuoteData when there is none
	FetchLastQuote(ctx context.Context, ticker string) (*domain.Quote, error)
}

// Cache stores provider responses with an expiry
type Cache interface {
	Store(table, key string, data interface{}, ttl time.Duration) error
	GetIfFresh(table, key string, out interface{}) (bool, error)
	Get(table, key string, out interface{}) (bool, error)
}
