// Package optimization estimates a Sharpe-optimal long-only allocation by Monte Carlo
// sampling of weight vectors over annualized return moments.
package optimization

import (
	"context"
	"encoding/base64"
	"math/rand/v2"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/risk"
	"github.com/aristath/frontier/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultMaxSimulations caps the sample count of a single request
const DefaultMaxSimulations = 200000

// Config holds the market data window and sampler limits
type Config struct {
	Period         string
	Interval       string
	PeriodsPerYear int
	SamplerWorkers int
	MaxSimulations int
}

func (c Config) withDefaults() Config {
	if c.Period == "" {
		c.Period = domain.DefaultPeriod
	}
	if c.Interval == "" {
		c.Interval = domain.DefaultInterval
	}
	if c.PeriodsPerYear <= 0 {
		c.PeriodsPerYear = domain.DefaultPeriodsPerYear
	}
	if c.MaxSimulations <= 0 {
		c.MaxSimulations = DefaultMaxSimulations
	}
	return c
}

// Request is a single optimization run. Nil RiskFree and Simulations take the defaults;
// a nil Seed draws a fresh one, which is reported back for replay.
type Request struct {
	Tickers     []string
	RiskFree    *float64
	Simulations *int
	Verbose     bool
	Seed        *uint64
}

// Plots holds base64-encoded PNG images
type Plots struct {
	EfficientFrontier string `json:"efficient_frontier"`
	PieChart          string `json:"pie_chart"`
}

// Meta describes how a run was produced
type Meta struct {
	Tickers        []string           `json:"tickers"`
	RiskFree       float64            `json:"risk_free"`
	Simulations    int                `json:"simulations"`
	Seed           uint64             `json:"seed"`
	RunID          string             `json:"run_id"`
	UsedTickers    []string           `json:"used_tickers"`
	SkippedTickers []string           `json:"skipped_tickers"`
	TimingsMS      map[string]float64 `json:"timings_ms"`
}

// Outcome is everything an optimization run produces
type Outcome struct {
	Result      *Result
	Plots       Plots
	Meta        Meta
	Simulations *SimulationSet
}

// OptimizerService runs the optimization pipeline
type OptimizerService struct {
	tickers  TickerPreparer
	fetcher  PriceFetcher
	renderer Renderer
	cfg      Config
	log      zerolog.Logger
}

// NewOptimizerService creates a new optimizer service. renderer may be nil, in which
// case no plots are produced.
func NewOptimizerService(tickers TickerPreparer, fetcher PriceFetcher, renderer Renderer, cfg Config, log zerolog.Logger) *OptimizerService {
	return &OptimizerService{
		tickers:  tickers,
		fetcher:  fetcher,
		renderer: renderer,
		cfg:      cfg.withDefaults(),
		log:      log.With().Str("service", "optimizer").Logger(),
	}
}

// Optimize runs normalize, validate, fetch, returns and moments, sampling, selection,
// downside analysis, packaging and rendering.
// Step traces are emitted only when req.Verbose is set.
func (s *OptimizerService) Optimize(ctx context.Context, req Request) (*Outcome, error) {
	riskFree := domain.DefaultRiskFree
	if req.RiskFree != nil {
		riskFree = *req.RiskFree
	}
	simulations := domain.DefaultSimulations
	if req.Simulations != nil {
		simulations = *req.Simulations
	}
	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	runID := uuid.New().String()

	trace := zerolog.Nop()
	if req.Verbose {
		trace = s.log.With().Str("run_id", runID).Logger()
	}
	ctx = trace.WithContext(ctx)
	timer := utils.NewStageTimer(trace)

	tickers, err := s.tickers.Prepare(req.Tickers)
	if err != nil {
		return nil, err
	}
	if simulations <= 0 {
		return nil, domain.NewInputError("`simulations` must be a positive integer.")
	}
	if simulations > s.cfg.MaxSimulations {
		return nil, domain.NewInputError("Too many simulations (max %d).", s.cfg.MaxSimulations)
	}
	trace.Info().
		Strs("tickers", tickers).
		Float64("risk_free", riskFree).
		Int("simulations", simulations).
		Uint64("seed", seed).
		Msg("Optimization started")
	timer.Mark("validate")

	prices, err := s.fetcher.FetchPrices(ctx, tickers, s.cfg.Period, s.cfg.Interval)
	if err != nil {
		return nil, err
	}
	timer.Mark("fetch")

	returns, err := ComputeReturns(prices)
	if err != nil {
		return nil, err
	}
	table := ComputeRiskReturn(returns, riskFree, s.cfg.PeriodsPerYear)
	corr := ComputeCorrelation(returns)
	moments := ComputeMoments(returns, s.cfg.PeriodsPerYear)
	trace.Info().
		Int("rows", returns.Rows()).
		Strs("tickers", returns.Tickers).
		Msg("Returns computed")
	timer.Mark("returns")

	sampler := NewSeededSampler(seed, s.cfg.SamplerWorkers, s.log)
	set, err := sampler.Sample(ctx, moments, riskFree, simulations)
	if err != nil {
		return nil, err
	}
	best := set.Best()
	trace.Info().
		Int("index", best.Index).
		Float64("sharpe", best.Sharpe).
		Float64("return", best.Return).
		Float64("volatility", best.Volatility).
		Floats64("weights", best.Weights).
		Msg("Best portfolio selected")
	timer.Mark("simulate")

	downside := risk.AnalyzeDownside(risk.ReturnSeries{
		Dates:  returns.Dates,
		Values: returns.PortfolioReturns(best.Weights),
	}, riskFree, s.cfg.PeriodsPerYear)
	timer.Mark("downside")

	result := Package(returns.Tickers, table, corr, best, downside)

	plots := s.render(set, returns.Tickers, best.Weights)
	timer.Mark("render")

	skipped := prices.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	rawTickers := req.Tickers
	if rawTickers == nil {
		rawTickers = []string{}
	}

	trace.Info().Dur("total", timer.Total()).Msg("Optimization finished")
	return &Outcome{
		Result: result,
		Plots:  plots,
		Meta: Meta{
			Tickers:        rawTickers,
			RiskFree:       riskFree,
			Simulations:    simulations,
			Seed:           seed,
			RunID:          runID,
			UsedTickers:    returns.Tickers,
			SkippedTickers: skipped,
			TimingsMS:      timer.Millis(),
		},
		Simulations: set,
	}, nil
}

// render draws both charts. A chart that cannot be drawn is left empty and
// logged; the numeric result is returned either way.
func (s *OptimizerService) render(set *SimulationSet, tickers []string, weights []float64) Plots {
	var plots Plots
	if s.renderer == nil {
		return plots
	}

	frontier, err := s.renderer.RenderFrontier(set.Volatilities, set.Returns, set.Sharpes)
	if err != nil {
		s.log.Warn().Err(err).Int("samples", set.Len()).Msg("Efficient frontier chart skipped")
	} else {
		plots.EfficientFrontier = base64.StdEncoding.EncodeToString(frontier)
	}

	pie, err := s.renderer.RenderWeights(tickers, weights)
	if err != nil {
		s.log.Warn().Err(err).Strs("tickers", tickers).Msg("Weights chart skipped")
	} else {
		plots.PieChart = base64.StdEncoding.EncodeToString(pie)
	}

	return plots
}
