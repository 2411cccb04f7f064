// Package formulas holds the numeric building blocks shared by the optimizer and the
// downside analyzer. Everything here works on plain float64 slices; NaN marks a missing value.
package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample (N-1) standard deviation
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// PopulationStdDev calculates the population (N) standard deviation
func PopulationStdDev(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	return stat.PopStdDev(data, nil)
}

// DropNaN returns the defined values of data, preserving order.
func DropNaN(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// PairwiseComplete keeps only the positions where both x and y are defined.
func PairwiseComplete(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// Covariance calculates the sample covariance over pairwise-complete observations.
// Returns NaN with fewer than two shared observations.
func Covariance(x, y []float64) float64 {
	xs, ys := PairwiseComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Covariance(xs, ys, nil)
}

// Correlation calculates the Pearson correlation over pairwise-complete observations.
// Returns NaN when either side has no variance.
func Correlation(x, y []float64) float64 {
	xs, ys := PairwiseComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// SimpleReturn is price/prev - 1, NaN when either price is missing or prev is zero.
func SimpleReturn(prev, price float64) float64 {
	if math.IsNaN(prev) || math.IsNaN(price) || prev == 0 {
		return math.NaN()
	}
	return price/prev - 1
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Nullable returns a pointer to v, or nil when v is NaN or infinite.
// Used where JSON output must carry null instead of an unencodable float.
func Nullable(v float64) *float64 {
	if !IsFinite(v) {
		return nil
	}
	return &v
}
