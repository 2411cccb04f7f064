package formulas

import "math"

// WealthCurve returns the growth of one unit of capital under the given periodic returns.
// The result has len(returns)+1 points and starts at 1; NaN returns count as 0.
func WealthCurve(returns []float64) []float64 {
	wealth := make([]float64, len(returns)+1)
	wealth[0] = 1
	for i, r := range returns {
		if math.IsNaN(r) {
			r = 0
		}
		wealth[i+1] = wealth[i] * (1 + r)
	}
	return wealth
}

// DrawdownSeries returns wealth / running peak - 1 for every point of the curve.
// Every value is <= 0.
func DrawdownSeries(wealth []float64) []float64 {
	dd := make([]float64, len(wealth))
	peak := math.Inf(-1)
	for i, w := range wealth {
		if w > peak {
			peak = w
		}
		if peak > 0 {
			dd[i] = w/peak - 1
		}
	}
	return dd
}

// MaxDrawdown returns the deepest drawdown of the return series as a negative fraction
// (0 when the curve never falls below a previous peak).
func MaxDrawdown(returns []float64) float64 {
	worst := 0.0
	for _, d := range DrawdownSeries(WealthCurve(returns)) {
		if d < worst {
			worst = d
		}
	}
	return worst
}

// CompoundReturn returns prod(1+r) - 1.
func CompoundReturn(returns []float64) float64 {
	growth := 1.0
	for _, r := range returns {
		growth *= 1 + r
	}
	return growth - 1
}

// GeometricAnnualReturn annualizes the compounded growth of the series.
// Falls back to (1 + mean)^periodsPerYear - 1 when the span in years is not positive.
func GeometricAnnualReturn(returns []float64, periodsPerYear int) float64 {
	if len(returns) == 0 {
		return math.NaN()
	}
	years := float64(len(returns)) / float64(periodsPerYear)
	if years > 0 {
		final := 1 + CompoundReturn(returns)
		return math.Pow(final, 1/years) - 1
	}
	return math.Pow(1+Mean(returns), float64(periodsPerYear)) - 1
}

// DownsideDeviation is the annualized population standard deviation of the negative
// returns only. It is 0 when fewer than two negative returns exist.
func DownsideDeviation(returns []float64, periodsPerYear int) float64 {
	negatives := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			negatives = append(negatives, r)
		}
	}
	if len(negatives) < 2 {
		return 0
	}
	return PopulationStdDev(negatives) * math.Sqrt(float64(periodsPerYear))
}
