package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanAndStdDev(t *testing.T) {
	data := []float64{0.01, 0.03, -0.02, 0.04}

	assert.InDelta(t, 0.015, Mean(data), 1e-12)
	// sample: sqrt(sum((x-m)^2)/3)
	assert.InDelta(t, 0.026457513, StdDev(data), 1e-9)
	// population: sqrt(sum((x-m)^2)/4)
	assert.InDelta(t, 0.022912878, PopulationStdDev(data), 1e-9)
}

func TestStatsOnEmptyInput(t *testing.T) {
	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
	assert.True(t, math.IsNaN(PopulationStdDev(nil)))
}

func TestPairwiseComplete(t *testing.T) {
	nan := math.NaN()
	x := []float64{1, nan, 3, 4}
	y := []float64{2, 5, nan, 8}

	xs, ys := PairwiseComplete(x, y)
	assert.Equal(t, []float64{1, 4}, xs)
	assert.Equal(t, []float64{2, 8}, ys)
}

func TestCovarianceAndCorrelation(t *testing.T) {
	x := []float64{0.01, 0.02, 0.03, 0.04}
	y := []float64{0.02, 0.04, 0.06, 0.08}

	assert.InDelta(t, 1.0, Correlation(x, y), 1e-12)
	assert.InDelta(t, 2*Covariance(x, x), Covariance(x, y), 1e-15)

	t.Run("flat series has undefined correlation", func(t *testing.T) {
		assert.True(t, math.IsNaN(Correlation(x, []float64{1, 1, 1, 1})))
	})

	t.Run("single shared observation", func(t *testing.T) {
		nan := math.NaN()
		assert.True(t, math.IsNaN(Covariance([]float64{1, nan}, []float64{nan, 2})))
	})
}

func TestSimpleReturn(t *testing.T) {
	assert.InDelta(t, 0.1, SimpleReturn(100, 110), 1e-12)
	assert.True(t, math.IsNaN(SimpleReturn(math.NaN(), 110)))
	assert.True(t, math.IsNaN(SimpleReturn(0, 110)))
}

func TestDropNaN(t *testing.T) {
	assert.Equal(t, []float64{1, 2}, DropNaN([]float64{math.NaN(), 1, math.NaN(), 2}))
	assert.Empty(t, DropNaN(nil))
}

func TestNullable(t *testing.T) {
	assert.Nil(t, Nullable(math.NaN()))
	assert.Nil(t, Nullable(math.Inf(1)))
	assert.Nil(t, Nullable(math.Inf(-1)))

	v := Nullable(-0.25)
	if assert.NotNil(t, v) {
		assert.Equal(t, -0.25, *v)
	}
}
