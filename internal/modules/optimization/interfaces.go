package optimization

import (
	"context"

	"github.com/aristath/frontier/internal/modules/historical"
)

// PriceFetcher assembles the price matrix for a ticker list
type PriceFetcher interface {
	FetchPrices(ctx context.Context, tickers []string, period, interval string) (*historical.PriceMatrix, error)
}

// Renderer turns numeric results into PNG images
type Renderer interface {
	// RenderFrontier plots every sample by volatility and return, coloured by Sharpe
	RenderFrontier(volatilities, returns, sharpes []float64) ([]byte, error)
	// RenderWeights plots the share of each labelled weight
	RenderWeights(labels []string, weights []float64) ([]byte, error)
}

// TickerPreparer normalizes and validates a ticker list
type TickerPreparer interface {
	Prepare(tickers []string) ([]string, error)
}
