package optimization

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/charts"
	"github.com/aristath/frontier/internal/modules/historical"
	"github.com/aristath/frontier/internal/modules/universe"
	testutil "github.com/aristath/frontier/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	frontierPoints int
	labels         []string
	err            error
}

func (r *fakeRenderer) RenderFrontier(vols, rets, sharpes []float64) ([]byte, error) {
	r.frontierPoints = len(vols)
	return []byte("frontier"), r.err
}

func (r *fakeRenderer) RenderWeights(labels []string, weights []float64) ([]byte, error) {
	r.labels = labels
	return []byte("pie"), nil
}

func newTestService(provider historical.PriceProvider, renderer Renderer) *OptimizerService {
	log := zerolog.Nop()
	return NewOptimizerService(
		universe.NewTickerValidator(log),
		historical.NewFetcher(provider, 2, log),
		renderer,
		Config{SamplerWorkers: 2},
		log,
	)
}

func scenarioProvider() *testutil.MockPriceProvider {
	provider := testutil.NewMockPriceProvider()
	provider.SetSeries("AAPL", testutil.IncreasingSeries(testutil.FixtureStart, 11, 100, 3))
	provider.SetSeries("MSFT", testutil.IncreasingSeries(testutil.FixtureStart, 11, 200, 2))
	return provider
}

func intPtr(v int) *int {
	return &v
}

func uintPtr(v uint64) *uint64 {
	return &v
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestOptimize_ReproducibleWithSeed(t *testing.T) {
	svc := newTestService(scenarioProvider(), nil)
	req := Request{
		Tickers:     []string{"AAPL", "MSFT"},
		Simulations: intPtr(100),
		Seed:        uintPtr(20240601),
	}

	first, err := svc.Optimize(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Optimize(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 100, first.Simulations.Len())
	assert.Equal(t, first.Result.OptimalPortfolio.Weights, second.Result.OptimalPortfolio.Weights)
	require.NotNil(t, first.Result.OptimalPortfolio.Sharpe)
	assert.Equal(t, *first.Result.OptimalPortfolio.Sharpe, *second.Result.OptimalPortfolio.Sharpe)
	assert.Equal(t, uint64(20240601), first.Meta.Seed)
	assert.NotEqual(t, first.Meta.RunID, second.Meta.RunID)

	var sum float64
	for _, w := range first.Result.OptimalPortfolio.Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestOptimize_Defaults(t *testing.T) {
	svc := newTestService(scenarioProvider(), nil)

	out, err := svc.Optimize(context.Background(), Request{Tickers: []string{" aapl", "MSFT", "AAPL"}})

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRiskFree, out.Meta.RiskFree)
	assert.Equal(t, domain.DefaultSimulations, out.Meta.Simulations)
	assert.Equal(t, []string{" aapl", "MSFT", "AAPL"}, out.Meta.Tickers)
	assert.Equal(t, []string{"AAPL", "MSFT"}, out.Meta.UsedTickers)
	assert.Empty(t, out.Meta.SkippedTickers)
	assert.Len(t, out.Result.RiskReturn, 2)
	assert.Len(t, out.Result.Correlation, 2)
	assert.Contains(t, out.Meta.TimingsMS, "simulate")
	assert.Equal(t, Plots{}, out.Plots)
}

func TestOptimize_SkipsFailedTickers(t *testing.T) {
	provider := scenarioProvider()
	provider.SetError("BAD", errors.New("HTTP 404"))
	renderer := &fakeRenderer{}
	svc := newTestService(provider, renderer)

	out, err := svc.Optimize(context.Background(), Request{
		Tickers:     []string{"AAPL", "BAD", "MSFT"},
		Simulations: intPtr(200),
		RiskFree:    floatPtr(0.01),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "MSFT"}, out.Meta.UsedTickers)
	assert.Equal(t, []string{"BAD"}, out.Meta.SkippedTickers)
	assert.NotContains(t, out.Result.OptimalPortfolio.Weights, "BAD")
	assert.Equal(t, []string{"AAPL", "MSFT"}, renderer.labels)
	assert.Equal(t, 200, renderer.frontierPoints)

	pie, err := base64.StdEncoding.DecodeString(out.Plots.PieChart)
	require.NoError(t, err)
	assert.Equal(t, "pie", string(pie))
}

func TestOptimize_AllFetchesFail(t *testing.T) {
	svc := newTestService(testutil.NewMockPriceProvider(), nil)

	_, err := svc.Optimize(context.Background(), Request{Tickers: []string{"AAA", "BBB"}})

	require.Error(t, err)
	var dataErr *domain.DataUnavailableError
	require.True(t, errors.As(err, &dataErr))
	assert.Equal(t, []string{"AAA", "BBB"}, dataErr.Failed)
}

func TestOptimize_InputErrors(t *testing.T) {
	provider := scenarioProvider()
	svc := NewOptimizerService(
		universe.NewTickerValidator(zerolog.Nop()),
		historical.NewFetcher(provider, 1, zerolog.Nop()),
		nil,
		Config{MaxSimulations: 1000},
		zerolog.Nop(),
	)

	tests := []struct {
		name string
		req  Request
	}{
		{"null tickers", Request{}},
		{"empty tickers", Request{Tickers: []string{" ", ""}}},
		{"invalid symbols", Request{Tickers: []string{"AA PL", "1234"}}},
		{"zero simulations", Request{Tickers: []string{"AAPL"}, Simulations: intPtr(0)}},
		{"too many simulations", Request{Tickers: []string{"AAPL"}, Simulations: intPtr(1001)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Optimize(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, domain.IsInputError(err), err.Error())
		})
	}
	assert.Equal(t, 0, provider.Calls("AAPL"))
}

func TestOptimize_RenderFailureKeepsResult(t *testing.T) {
	svc := newTestService(scenarioProvider(), &fakeRenderer{err: errors.New("font missing")})

	out, err := svc.Optimize(context.Background(), Request{Tickers: []string{"AAPL"}, Simulations: intPtr(10)})

	require.NoError(t, err)
	assert.Empty(t, out.Plots.EfficientFrontier)
	assert.NotEmpty(t, out.Plots.PieChart)
	assert.InDelta(t, 1.0, out.Result.OptimalPortfolio.Weights["AAPL"], 1e-9)
}

func TestOptimize_ChartsWithDegenerateMoments(t *testing.T) {
	tests := []struct {
		name   string
		series map[string][]domain.PricePoint
	}{
		{
			name: "single return row",
			series: map[string][]domain.PricePoint{
				"AAPL": testutil.MonthlySeries(testutil.FixtureStart, 100, 110),
				"MSFT": testutil.MonthlySeries(testutil.FixtureStart, 200, 190),
			},
		},
		{
			name: "newly listed ticker",
			series: map[string][]domain.PricePoint{
				"AAPL": testutil.IncreasingSeries(testutil.FixtureStart, 11, 100, 3),
				"NEW":  testutil.MonthlySeries(testutil.FixtureStart.AddDate(0, 10, 0), 25),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := testutil.NewMockPriceProvider()
			tickers := make([]string, 0, len(tt.series))
			for ticker, points := range tt.series {
				provider.SetSeries(ticker, points)
				tickers = append(tickers, ticker)
			}
			svc := newTestService(provider, charts.NewService(zerolog.Nop()))

			out, err := svc.Optimize(context.Background(), Request{
				Tickers:     tickers,
				Simulations: intPtr(50),
				Seed:        uintPtr(3),
			})

			require.NoError(t, err)
			require.NotNil(t, out.Result)
			assert.Len(t, out.Result.OptimalPortfolio.Weights, len(out.Meta.UsedTickers))
			assert.Empty(t, out.Plots.EfficientFrontier)
			assert.NotEmpty(t, out.Plots.PieChart)
		})
	}
}

func TestOptimize_VerboseTrace(t *testing.T) {
	var buf testutil.SyncBuffer
	log := zerolog.New(&buf)
	svc := NewOptimizerService(
		universe.NewTickerValidator(zerolog.Nop()),
		historical.NewFetcher(scenarioProvider(), 1, zerolog.Nop()),
		nil,
		Config{},
		log,
	)

	_, err := svc.Optimize(context.Background(), Request{Tickers: []string{"AAPL"}, Simulations: intPtr(10)})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), "Optimization started")

	_, err = svc.Optimize(context.Background(), Request{Tickers: []string{"AAPL"}, Simulations: intPtr(10), Verbose: true})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Optimization started")
	assert.Contains(t, buf.String(), "Fetched price series")
	assert.Contains(t, buf.String(), "Best portfolio selected")
}
