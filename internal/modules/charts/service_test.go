package charts

import (
	"math"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestRenderFrontier(t *testing.T) {
	svc := NewService(zerolog.Nop())

	t.Run("scatter renders png", func(t *testing.T) {
		vols := []float64{0.10, 0.12, 0.15, 0.18, 0.20}
		rets := []float64{0.05, 0.06, 0.08, 0.09, 0.11}
		sharpes := []float64{0.3, 0.33, 0.4, 0.39, 0.45}

		img, err := svc.RenderFrontier(vols, rets, sharpes)
		require.NoError(t, err)
		assert.Equal(t, pngMagic, img[:len(pngMagic)])
	})

	t.Run("single point", func(t *testing.T) {
		img, err := svc.RenderFrontier([]float64{0.1}, []float64{0.05}, []float64{0.3})
		require.NoError(t, err)
		assert.Equal(t, pngMagic, img[:len(pngMagic)])
	})

	t.Run("non-finite points are skipped", func(t *testing.T) {
		vols := []float64{math.NaN(), 0.1, 0.2}
		rets := []float64{0.05, math.Inf(1), 0.07}
		sharpes := []float64{0.1, 0.2, math.NaN()}

		img, err := svc.RenderFrontier(vols, rets, sharpes)
		require.NoError(t, err)
		assert.NotEmpty(t, img)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := svc.RenderFrontier(nil, nil, nil)
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("all points non-finite", func(t *testing.T) {
		_, err := svc.RenderFrontier([]float64{math.NaN()}, []float64{0.1}, []float64{0.1})
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := svc.RenderFrontier([]float64{0.1}, []float64{0.1, 0.2}, []float64{0.1})
		assert.Error(t, err)
	})
}

func TestRenderWeights(t *testing.T) {
	svc := NewService(zerolog.Nop())

	t.Run("pie renders png", func(t *testing.T) {
		img, err := svc.RenderWeights([]string{"AAPL", "MSFT", "GOOG"}, []float64{0.5, 0.3, 0.2})
		require.NoError(t, err)
		assert.Equal(t, pngMagic, img[:len(pngMagic)])
	})

	tests := []struct {
		name    string
		labels  []string
		weights []float64
	}{
		{"empty", nil, nil},
		{"mismatch", []string{"A"}, []float64{0.5, 0.5}},
		{"negative weight", []string{"A", "B"}, []float64{1.2, -0.2}},
		{"nan weight", []string{"A"}, []float64{math.NaN()}},
		{"all zero", []string{"A", "B"}, []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RenderWeights(tt.labels, tt.weights)
			assert.Error(t, err)
		})
	}
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{0.2, 0.2})
	assert.Less(t, r.Min, 0.2)
	assert.Greater(t, r.Max, 0.2)

	r = paddedRange([]float64{0, 1})
	assert.InDelta(t, -0.05, r.Min, 1e-12)
	assert.InDelta(t, 1.05, r.Max, 1e-12)
}
