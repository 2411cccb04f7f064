// Package risk computes drawdown and downside statistics of a periodic return series.
package risk

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/aristath/frontier/pkg/formulas"
)

// ReturnSeries is a periodic return series. Dates is optional: when it is empty or any
// entry is the zero time, the series is not calendar-addressable.
type ReturnSeries struct {
	Dates  []time.Time
	Values []float64
}

// DownsideStats describes the downside of a return series. Every field is nil when
// the series holds no defined return.
type DownsideStats struct {
	MaxDrawdown             *float64 `json:"max_drawdown"`
	WorstPeriodReturn       *float64 `json:"worst_month_return"`
	WorstPeriodDate         *string  `json:"worst_month_date"`
	WorstYearReturn         *float64 `json:"worst_year_return"`
	WorstYear               *int     `json:"worst_year"`
	DownsideDeviationAnnual *float64 `json:"downside_deviation_annual"`
	Sortino                 *float64 `json:"sortino"`
	AnnualReturnGeom        *float64 `json:"annual_return_geom"`
}

// defined drops NaN entries, keeping dates aligned with the remaining values
func (s ReturnSeries) defined() ([]float64, []time.Time, bool) {
	hasDates := len(s.Dates) == len(s.Values) && len(s.Values) > 0
	values := make([]float64, 0, len(s.Values))
	var dates []time.Time
	if hasDates {
		dates = make([]time.Time, 0, len(s.Values))
	}

	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
		if hasDates {
			if s.Dates[i].IsZero() {
				hasDates = false
				dates = nil
				continue
			}
			dates = append(dates, s.Dates[i])
		}
	}
	return values, dates, hasDates
}

// AnalyzeDownside computes drawdown and downside-risk statistics.
// It never fails: an empty series yields all-nil stats.
func AnalyzeDownside(series ReturnSeries, riskFreeAnnual float64, periodsPerYear int) DownsideStats {
	r, dates, calendar := series.defined()
	if len(r) == 0 {
		return DownsideStats{}
	}

	var stats DownsideStats
	stats.MaxDrawdown = formulas.Nullable(formulas.MaxDrawdown(r))

	worstIdx := 0
	for i, v := range r {
		if v < r[worstIdx] {
			worstIdx = i
		}
	}
	stats.WorstPeriodReturn = formulas.Nullable(r[worstIdx])
	worstDate := strconv.Itoa(worstIdx)
	if calendar {
		worstDate = dates[worstIdx].Format("2006-01-02")
	}
	stats.WorstPeriodDate = &worstDate

	if calendar {
		year, ret := worstCalendarYear(r, dates)
		stats.WorstYear = &year
		stats.WorstYearReturn = formulas.Nullable(ret)
	}

	annual := formulas.GeometricAnnualReturn(r, periodsPerYear)
	stats.AnnualReturnGeom = formulas.Nullable(annual)

	dd := formulas.DownsideDeviation(r, periodsPerYear)
	stats.DownsideDeviationAnnual = formulas.Nullable(dd)
	if dd > 0 {
		stats.Sortino = formulas.Nullable((annual - riskFreeAnnual) / dd)
	}

	return stats
}

// worstCalendarYear compounds returns within each calendar year and returns the year
// with the lowest compounded return (earliest year on ties).
func worstCalendarYear(r []float64, dates []time.Time) (int, float64) {
	growth := make(map[int]float64)
	for i, v := range r {
		y := dates[i].Year()
		if _, ok := growth[y]; !ok {
			growth[y] = 1
		}
		growth[y] *= 1 + v
	}

	years := make([]int, 0, len(growth))
	for y := range growth {
		years = append(years, y)
	}
	sort.Ints(years)

	worstYear := years[0]
	for _, y := range years[1:] {
		if growth[y] < growth[worstYear] {
			worstYear = y
		}
	}
	return worstYear, growth[worstYear] - 1
}
