// Package charts renders optimization results as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	gocharts "github.com/vicanso/go-charts/v2"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	frontierWidth  = 1000
	frontierHeight = 600
	pieWidth       = 800
	pieHeight      = 600

	// Minimum half-width of an axis range when every point sits on one value
	minRangePad = 0.01
)

// ErrNoData is returned when there is nothing to plot
var ErrNoData = errors.New("no data to plot")

// Service renders the efficient frontier and the weights chart
type Service struct {
	log zerolog.Logger
}

// NewService creates a new charts service
func NewService(log zerolog.Logger) *Service {
	return &Service{
		log: log.With().Str("service", "charts").Logger(),
	}
}

// RenderFrontier draws one dot per simulated portfolio with volatility on the
// x axis and expected return on the y axis. Dots are coloured by Sharpe ratio
// on the viridis scale. Points with a non-finite coordinate are left out.
func (s *Service) RenderFrontier(volatilities, returns, sharpes []float64) ([]byte, error) {
	if len(volatilities) != len(returns) || len(volatilities) != len(sharpes) {
		return nil, fmt.Errorf("frontier series length mismatch: %d volatilities, %d returns, %d sharpes",
			len(volatilities), len(returns), len(sharpes))
	}

	xs := make([]float64, 0, len(volatilities))
	ys := make([]float64, 0, len(returns))
	colors := make([]float64, 0, len(sharpes))
	for i := range volatilities {
		if !finite(volatilities[i]) || !finite(returns[i]) {
			continue
		}
		xs = append(xs, volatilities[i])
		ys = append(ys, returns[i])
		colors = append(colors, sharpes[i])
	}
	if len(xs) == 0 {
		return nil, ErrNoData
	}

	cmin, cmax := bounds(colors)
	bySharpe := func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
		if index < 0 || index >= len(colors) || !finite(colors[index]) || cmax <= cmin {
			return chart.Viridis(0, 0, 1)
		}
		return chart.Viridis(colors[index], cmin, cmax)
	}

	graph := chart.Chart{
		Title:  "Efficient Frontier",
		Width:  frontierWidth,
		Height: frontierHeight,
		XAxis: chart.XAxis{
			Name:           "Volatility",
			Range:          paddedRange(xs),
			ValueFormatter: percentFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Expected Return",
			Range:          paddedRange(ys),
			ValueFormatter: percentFormatter,
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth:      chart.Disabled,
					DotWidth:         2,
					DotColorProvider: bySharpe,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render frontier chart: %w", err)
	}

	s.log.Debug().
		Int("points", len(xs)).
		Int("bytes", buf.Len()).
		Msg("Rendered efficient frontier")

	return buf.Bytes(), nil
}

// RenderWeights draws a pie chart of the allocation, one slice per label.
func (s *Service) RenderWeights(labels []string, weights []float64) ([]byte, error) {
	if len(labels) != len(weights) {
		return nil, fmt.Errorf("weights length mismatch: %d labels, %d weights", len(labels), len(weights))
	}
	if len(weights) == 0 {
		return nil, ErrNoData
	}

	total := 0.0
	for _, w := range weights {
		if !finite(w) || w < 0 {
			return nil, fmt.Errorf("invalid weight %v", w)
		}
		total += w
	}
	if total <= 0 {
		return nil, ErrNoData
	}

	legend := make([]string, len(labels))
	for i, label := range labels {
		legend[i] = fmt.Sprintf("%s (%.1f%%)", label, weights[i]/total*100)
	}

	p, err := gocharts.PieRender(
		weights,
		gocharts.TitleTextOptionFunc("Optimal Portfolio Weights"),
		gocharts.LegendOptionFunc(gocharts.LegendOption{
			Data: legend,
			Top:  gocharts.PositionTop,
		}),
		gocharts.ThemeOptionFunc(gocharts.ThemeLight),
		gocharts.WidthOptionFunc(pieWidth),
		gocharts.HeightOptionFunc(pieHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render weights chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to encode weights chart: %w", err)
	}

	s.log.Debug().
		Int("slices", len(weights)).
		Int("bytes", len(buf)).
		Msg("Rendered weights chart")

	return buf, nil
}

func percentFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.1f%%", f*100)
	}
	return ""
}

// paddedRange spans the values with a 5% margin, never collapsing to zero width
func paddedRange(values []float64) *chart.ContinuousRange {
	lo, hi := bounds(values)
	pad := (hi - lo) * 0.05
	if pad < minRangePad {
		pad = math.Max(minRangePad, math.Abs(hi)*0.05)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

// bounds returns the min and max of the finite values, or 0,0 when there are none
func bounds(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if !finite(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
