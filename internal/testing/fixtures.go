package testing

import (
	"time"

	"github.com/aristath/frontier/internal/domain"
)

// MonthlySeries builds a month-start series from start with the given prices
func MonthlySeries(start time.Time, prices ...float64) []domain.PricePoint {
	points := make([]domain.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = domain.PricePoint{Date: start.AddDate(0, i, 0), Price: p}
	}
	return points
}

// IncreasingSeries builds n monthly points starting at base and growing by step
func IncreasingSeries(start time.Time, n int, base, step float64) []domain.PricePoint {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = base + float64(i)*step
	}
	return MonthlySeries(start, prices...)
}

// ZigZagSeries builds n monthly points alternating between growth factors up and down
func ZigZagSeries(start time.Time, n int, base, up, down float64) []domain.PricePoint {
	prices := make([]float64, n)
	price := base
	for i := range prices {
		prices[i] = price
		if i%2 == 0 {
			price *= up
		} else {
			price *= down
		}
	}
	return MonthlySeries(start, prices...)
}

// FixtureStart is the first date of generated fixture series
var FixtureStart = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
