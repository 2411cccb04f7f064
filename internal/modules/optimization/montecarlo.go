package optimization

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"github.com/aristath/frontier/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// evalChunkRows is the number of portfolios evaluated per matrix product
const evalChunkRows = 1024

// Simulation is one sampled portfolio
type Simulation struct {
	Index      int
	Return     float64
	Volatility float64
	Sharpe     float64
	Weights    []float64
}

// SimulationSet holds every sampled portfolio in generation order.
// Weights is row-major with one row of len(Tickers) per sample.
type SimulationSet struct {
	Tickers      []string
	Weights      []float64
	Returns      []float64
	Volatilities []float64
	Sharpes      []float64
}

// Len returns the number of samples
func (s *SimulationSet) Len() int {
	return len(s.Returns)
}

// WeightsAt returns the weight row of sample i; the slice aliases the set
func (s *SimulationSet) WeightsAt(i int) []float64 {
	k := len(s.Tickers)
	return s.Weights[i*k : (i+1)*k : (i+1)*k]
}

// At returns sample i with a copy of its weights
func (s *SimulationSet) At(i int) Simulation {
	w := make([]float64, len(s.Tickers))
	copy(w, s.WeightsAt(i))
	return Simulation{
		Index:      i,
		Return:     s.Returns[i],
		Volatility: s.Volatilities[i],
		Sharpe:     s.Sharpes[i],
		Weights:    w,
	}
}

// Best returns the sample with the highest Sharpe ratio. Exact ties go to the
// earliest sample; NaN ranks below every number.
func (s *SimulationSet) Best() Simulation {
	best := 0
	bestSharpe := math.Inf(-1)
	for i, v := range s.Sharpes {
		if math.IsNaN(v) {
			v = math.Inf(-1)
		}
		if v > bestSharpe {
			best, bestSharpe = i, v
		}
	}
	return s.At(best)
}

// Sampler draws random long-only portfolios and scores them.
// A Sampler owns its generator and must not be shared between goroutines.
type Sampler struct {
	rng     *rand.Rand
	workers int
	log     zerolog.Logger
}

// NewSampler creates a sampler drawing from rng. workers <= 0 uses runtime.NumCPU().
func NewSampler(rng *rand.Rand, workers int, log zerolog.Logger) *Sampler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Sampler{
		rng:     rng,
		workers: workers,
		log:     log.With().Str("component", "sampler").Logger(),
	}
}

// NewSeededSampler creates a sampler with a PCG generator seeded by seed
func NewSeededSampler(seed uint64, workers int, log zerolog.Logger) *Sampler {
	return NewSampler(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), workers, log)
}

// drawWeights fills an n×k buffer: each row is k uniform(0,1) draws divided by their sum.
// Draws are consumed strictly in row order so the result depends only on the generator.
func (s *Sampler) drawWeights(n, k int) []float64 {
	weights := make([]float64, n*k)
	for i := 0; i < n; i++ {
		row := weights[i*k : (i+1)*k]
		var sum float64
		for j := range row {
			row[j] = s.rng.Float64()
			sum += row[j]
		}
		if sum == 0 {
			for j := range row {
				row[j] = 1 / float64(k)
			}
			continue
		}
		floats.Scale(1/sum, row)
	}
	return weights
}

// Sample draws n portfolios over m and scores each by expected return w·μ,
// volatility √(wᵀΣw) and Sharpe (ret − riskFree)/vol, which is 0 unless vol > 0.
func (s *Sampler) Sample(ctx context.Context, m *Moments, riskFree float64, n int) (*SimulationSet, error) {
	if n <= 0 {
		return nil, domain.NewInputError("`simulations` must be a positive integer.")
	}
	k := len(m.Tickers)
	if k == 0 {
		return nil, domain.NewInputError("Provide at least one ticker.")
	}

	set := &SimulationSet{
		Tickers:      m.Tickers,
		Weights:      s.drawWeights(n, k),
		Returns:      make([]float64, n),
		Volatilities: make([]float64, n),
		Sharpes:      make([]float64, n),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for start := 0; start < n; start += evalChunkRows {
		end := min(start+evalChunkRows, n)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.evaluate(set, m, riskFree, start, end)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.log.Debug().
		Int("samples", n).
		Int("assets", k).
		Int("workers", s.workers).
		Msg("Sampled portfolios")
	return set, nil
}

// evaluate scores rows [start, end) of set. Each call writes a disjoint range.
func (s *Sampler) evaluate(set *SimulationSet, m *Moments, riskFree float64, start, end int) {
	k := len(set.Tickers)
	rows := end - start
	w := mat.NewDense(rows, k, set.Weights[start*k:end*k])

	var rets mat.VecDense
	rets.MulVec(w, m.Mean)

	var wc mat.Dense
	wc.Mul(w, m.Cov)

	for r := 0; r < rows; r++ {
		i := start + r
		ret := rets.AtVec(r)
		vol := math.Sqrt(math.Max(floats.Dot(wc.RawRowView(r), w.RawRowView(r)), 0))

		sharpe := 0.0
		if vol > 0 {
			sharpe = (ret - riskFree) / vol
		}
		set.Returns[i] = ret
		set.Volatilities[i] = vol
		set.Sharpes[i] = sharpe
	}
}
