package optimization

import (
	"github.com/aristath/frontier/internal/modules/risk"
	"github.com/aristath/frontier/pkg/formulas"
)

// RiskReturnEntry is one row of the risk/return table
type RiskReturnEntry struct {
	Return    *float64 `json:"Return"`
	Deviation *float64 `json:"Deviation"`
	Sharpe    *float64 `json:"Sharpe"`
}

// OptimalPortfolio is the highest-Sharpe sample with its downside profile
type OptimalPortfolio struct {
	ExpectedReturn *float64           `json:"expected_return"`
	Volatility     *float64           `json:"volatility"`
	Sharpe         *float64           `json:"sharpe"`
	Weights        map[string]float64 `json:"weights"`
	Downside       risk.DownsideStats `json:"downside"`
}

// Result is the numeric outcome of an optimization run
type Result struct {
	RiskReturn       map[string]RiskReturnEntry     `json:"risk_return"`
	Correlation      map[string]map[string]*float64 `json:"correlation"`
	OptimalPortfolio OptimalPortfolio               `json:"optimal_portfolio"`
}

// Package assembles the result. corr is indexed like tickers, as are best.Weights.
// Non-finite numbers become nil.
func Package(tickers []string, table []RiskReturnRow, corr [][]float64, best Simulation, downside risk.DownsideStats) *Result {
	result := &Result{
		RiskReturn:  make(map[string]RiskReturnEntry, len(table)),
		Correlation: make(map[string]map[string]*float64, len(tickers)),
	}

	for _, row := range table {
		result.RiskReturn[row.Ticker] = RiskReturnEntry{
			Return:    formulas.Nullable(row.Return),
			Deviation: formulas.Nullable(row.Deviation),
			Sharpe:    formulas.Nullable(row.Sharpe),
		}
	}

	for i, a := range tickers {
		inner := make(map[string]*float64, len(tickers))
		for j, b := range tickers {
			inner[b] = formulas.Nullable(corr[i][j])
		}
		result.Correlation[a] = inner
	}

	weights := make(map[string]float64, len(tickers))
	for i, t := range tickers {
		weights[t] = best.Weights[i]
	}

	result.OptimalPortfolio = OptimalPortfolio{
		ExpectedReturn: formulas.Nullable(best.Return),
		Volatility:     formulas.Nullable(best.Volatility),
		Sharpe:         formulas.Nullable(best.Sharpe),
		Weights:        weights,
		Downside:       downside,
	}
	return result
}
