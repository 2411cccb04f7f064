package optimization

import (
	"fmt"
	"math"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/historical"
	"github.com/aristath/frontier/pkg/formulas"
)

// ReturnMatrix holds periodic simple returns aligned with the price matrix columns.
// Values[row][col] is NaN where a return is undefined. Dates[row] is the later
// date of the two prices the return spans.
type ReturnMatrix struct {
	Tickers []string
	Dates   []time.Time
	Values  [][]float64
}

// Rows returns the number of return periods
func (rm *ReturnMatrix) Rows() int {
	return len(rm.Values)
}

// Column returns a copy of the returns of column j
func (rm *ReturnMatrix) Column(j int) []float64 {
	col := make([]float64, len(rm.Values))
	for i, row := range rm.Values {
		col[i] = row[j]
	}
	return col
}

// PortfolioReturns returns the per-period return of a portfolio with the given weights.
// A period where any constituent return is undefined is NaN.
func (rm *ReturnMatrix) PortfolioReturns(weights []float64) []float64 {
	out := make([]float64, len(rm.Values))
	for i, row := range rm.Values {
		var sum float64
		for j, r := range row {
			if math.IsNaN(r) {
				sum = math.NaN()
				break
			}
			sum += r * weights[j]
		}
		out[i] = sum
	}
	return out
}

// ComputeReturns converts prices into simple periodic returns.
// A missing price after the first observation of a column is padded with the last
// known price before differencing, so it yields a zero return. Rows where every
// return is undefined (always including the first) are dropped.
func ComputeReturns(pm *historical.PriceMatrix) (*ReturnMatrix, error) {
	cols := pm.Cols()
	rm := &ReturnMatrix{Tickers: pm.Tickers}

	last := make([]float64, cols)
	for j := range last {
		last[j] = math.NaN()
	}

	for i, prices := range pm.Prices {
		row := make([]float64, cols)
		defined := false
		for j, p := range prices {
			if math.IsNaN(p) {
				p = last[j]
			}
			row[j] = formulas.SimpleReturn(last[j], p)
			if !math.IsNaN(row[j]) {
				defined = true
			}
			last[j] = p
		}
		if i > 0 && defined {
			rm.Values = append(rm.Values, row)
			rm.Dates = append(rm.Dates, pm.Dates[i])
		}
	}

	if rm.Rows() == 0 {
		return nil, fmt.Errorf("%d price rows for %d tickers: %w", pm.Rows(), cols, domain.ErrInsufficientData)
	}
	return rm, nil
}
