package historical

import (
	"math"
	"sort"
	"time"

	"github.com/aristath/frontier/internal/domain"
)

// PriceMatrix holds prices aligned on a shared ascending date axis.
// Prices[row][col] is NaN where a ticker has no observation on that date.
type PriceMatrix struct {
	Tickers []string
	Dates   []time.Time
	Prices  [][]float64
	// Skipped lists requested tickers that produced no usable column
	Skipped []string
}

// Rows returns the number of dates
func (pm *PriceMatrix) Rows() int {
	return len(pm.Dates)
}

// Cols returns the number of tickers
func (pm *PriceMatrix) Cols() int {
	return len(pm.Tickers)
}

// Column returns a copy of the prices of column j
func (pm *PriceMatrix) Column(j int) []float64 {
	col := make([]float64, len(pm.Prices))
	for i, row := range pm.Prices {
		col[i] = row[j]
	}
	return col
}

// dayKey truncates a timestamp to its UTC calendar day so that providers reporting
// the same bar at different exchange offsets still align.
func dayKey(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// cleanSeries sorts a series by date and collapses duplicate dates (last value wins).
// Non-finite and non-positive prices are dropped.
func cleanSeries(points []domain.PricePoint) map[time.Time]float64 {
	sorted := make([]domain.PricePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Date.Before(sorted[b].Date)
	})

	byDay := make(map[time.Time]float64, len(sorted))
	for _, p := range sorted {
		if math.IsNaN(p.Price) || math.IsInf(p.Price, 0) || p.Price <= 0 {
			continue
		}
		byDay[dayKey(p.Date)] = p.Price
	}
	return byDay
}

// BuildPriceMatrix aligns the series of each ticker on the sorted union of their dates.
// series[i] belongs to tickers[i]; tickers whose series holds no usable price are
// reported in Skipped and get no column.
func BuildPriceMatrix(tickers []string, series [][]domain.PricePoint) *PriceMatrix {
	pm := &PriceMatrix{}

	columns := make([]map[time.Time]float64, 0, len(tickers))
	dateSet := make(map[time.Time]struct{})
	for i, ticker := range tickers {
		var points []domain.PricePoint
		if i < len(series) {
			points = series[i]
		}
		byDay := cleanSeries(points)
		if len(byDay) == 0 {
			pm.Skipped = append(pm.Skipped, ticker)
			continue
		}
		pm.Tickers = append(pm.Tickers, ticker)
		columns = append(columns, byDay)
		for d := range byDay {
			dateSet[d] = struct{}{}
		}
	}

	pm.Dates = make([]time.Time, 0, len(dateSet))
	for d := range dateSet {
		pm.Dates = append(pm.Dates, d)
	}
	sort.Slice(pm.Dates, func(a, b int) bool { return pm.Dates[a].Before(pm.Dates[b]) })

	pm.Prices = make([][]float64, len(pm.Dates))
	for r, d := range pm.Dates {
		row := make([]float64, len(columns))
		for c, byDay := range columns {
			if p, ok := byDay[d]; ok {
				row[c] = p
			} else {
				row[c] = math.NaN()
			}
		}
		pm.Prices[r] = row
	}

	return pm
}
