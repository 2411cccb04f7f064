package historical

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
)

// PriceSeriesTable is the cache table holding provider price series
const PriceSeriesTable = "price_series"

// CachedProvider serves price series from a TTL cache in front of another provider.
// When the upstream call fails, an expired entry is served instead of the error.
// Quotes always go upstream.
type CachedProvider struct {
	upstream PriceProvider
	cache    Cache
	ttl      time.Duration
	log      zerolog.Logger
}

// NewCachedProvider wraps upstream with cache
func NewCachedProvider(upstream PriceProvider, cache Cache, ttl time.Duration, log zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		upstream: upstream,
		cache:    cache,
		ttl:      ttl,
		log:      log.With().Str("component", "cached_price_provider").Logger(),
	}
}

func seriesKey(ticker, period, interval string) string {
	return fmt.Sprintf("%s:%s:%s", ticker, period, interval)
}

// FetchPriceSeries implements PriceProvider
func (p *CachedProvider) FetchPriceSeries(ctx context.Context, ticker, period, interval string) ([]domain.PricePoint, error) {
	key := seriesKey(ticker, period, interval)

	var cached []domain.PricePoint
	found, err := p.cache.GetIfFresh(PriceSeriesTable, key, &cached)
	if err != nil {
		p.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
	} else if found && len(cached) > 0 {
		p.log.Debug().Str("key", key).Int("points", len(cached)).Msg("Price series cache hit")
		return cached, nil
	}

	points, fetchErr := p.upstream.FetchPriceSeries(ctx, ticker, period, interval)
	if fetchErr != nil {
		var stale []domain.PricePoint
		if ok, err := p.cache.Get(PriceSeriesTable, key, &stale); err == nil && ok && len(stale) > 0 {
			p.log.Warn().
				Err(fetchErr).
				Str("ticker", ticker).
				Msg("Upstream fetch failed, serving stale price series")
			return stale, nil
		}
		return nil, fetchErr
	}

	if len(points) > 0 {
		if err := p.cache.Store(PriceSeriesTable, key, points, p.ttl); err != nil {
			p.log.Warn().Err(err).Str("key", key).Msg("Failed to cache price series")
		}
	}
	return points, nil
}

// FetchLastQuote implements PriceProvider
func (p *CachedProvider) FetchLastQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	return p.upstream.FetchLastQuote(ctx, ticker)
}
