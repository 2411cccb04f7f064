package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/frontier/internal/domain"
)

// MockPriceProvider is an in-memory PriceProvider for tests.
// Unknown tickers fail with an error, as a live provider would.
type MockPriceProvider struct {
	mu       sync.Mutex
	series   map[string][]domain.PricePoint
	quotes   map[string]*domain.Quote
	errs     map[string]error
	calls    map[string]int
	quoteErr error
}

// NewMockPriceProvider creates an empty mock provider
func NewMockPriceProvider() *MockPriceProvider {
	return &MockPriceProvider{
		series: make(map[string][]domain.PricePoint),
		quotes: make(map[string]*domain.Quote),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

// SetSeries sets the price series returned for ticker
func (m *MockPriceProvider) SetSeries(ticker string, points []domain.PricePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[ticker] = points
}

// SetError makes every series fetch for ticker fail with err
func (m *MockPriceProvider) SetError(ticker string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[ticker] = err
}

// SetQuote sets the quote returned for ticker
func (m *MockPriceProvider) SetQuote(ticker string, quote *domain.Quote) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[ticker] = quote
}

// SetQuoteError makes every quote fetch fail with err
func (m *MockPriceProvider) SetQuoteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quoteErr = err
}

// Calls returns how many series fetches were made for ticker
func (m *MockPriceProvider) Calls(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ticker]
}

// FetchPriceSeries returns the configured series
func (m *MockPriceProvider) FetchPriceSeries(ctx context.Context, ticker, period, interval string) ([]domain.PricePoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[ticker]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.errs[ticker]; ok {
		return nil, err
	}
	points, ok := m.series[ticker]
	if !ok {
		return nil, fmt.Errorf("no data for %s", ticker)
	}
	out := make([]domain.PricePoint, len(points))
	copy(out, points)
	return out, nil
}

// FetchLastQuote returns the configured quote or domain.ErrNoQuoteData
func (m *MockPriceProvider) FetchLastQuote(ctx context.Context, ticker string) (*domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quoteErr != nil {
		return nil, m.quoteErr
	}
	quote, ok := m.quotes[ticker]
	if !ok {
		return nil, domain.ErrNoQuoteData
	}
	q := *quote
	return &q, nil
}
