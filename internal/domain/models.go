// Package domain provides core domain models and types.
package domain

import "time"

// Default market data window used by the optimizer
const (
	DefaultPeriod         = "10y"
	DefaultInterval       = "1mo"
	DefaultPeriodsPerYear = 12
	DefaultRiskFree       = 0.02
	DefaultSimulations    = 5000
)

// PricePoint is one split/dividend adjusted observation of a price series
type PricePoint struct {
	Date  time.Time `json:"date" msgpack:"d"`
	Price float64   `json:"price" msgpack:"p"`
}

// Quote is the most recent daily candle for a ticker
type Quote struct {
	Ticker    string  `json:"ticker"`
	Country   *string `json:"country"`
	LastDate  string  `json:"last_date"` // YYYY-MM-DD
	LastOpen  float64 `json:"last_open"`
	LastClose float64 `json:"last_close"`
}
