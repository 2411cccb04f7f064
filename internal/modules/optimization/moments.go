package optimization

import (
	"math"

	"github.com/aristath/frontier/pkg/formulas"
	"gonum.org/v1/gonum/mat"
)

// Moments are the annualized first and second moments of a return matrix
type Moments struct {
	Tickers []string
	Mean    *mat.VecDense
	Cov     *mat.SymDense
}

// ComputeMoments annualizes the mean vector and the sample covariance matrix
// (pairwise-complete observations) by periodsPerYear.
func ComputeMoments(rm *ReturnMatrix, periodsPerYear int) *Moments {
	k := len(rm.Tickers)
	scale := float64(periodsPerYear)

	cols := make([][]float64, k)
	for j := range cols {
		cols[j] = rm.Column(j)
	}

	mean := mat.NewVecDense(k, nil)
	cov := mat.NewSymDense(k, nil)
	for i := 0; i < k; i++ {
		mean.SetVec(i, formulas.Mean(formulas.DropNaN(cols[i]))*scale)
		for j := i; j < k; j++ {
			cov.SetSym(i, j, formulas.Covariance(cols[i], cols[j])*scale)
		}
	}

	return &Moments{Tickers: rm.Tickers, Mean: mean, Cov: cov}
}

// RiskReturnRow is the annualized profile of a single ticker
type RiskReturnRow struct {
	Ticker    string
	Return    float64
	Deviation float64
	Sharpe    float64 // NaN when Deviation is not positive
}

// ComputeRiskReturn builds the per-ticker table: mean × ppy, population standard
// deviation × √ppy and the Sharpe ratio against riskFree.
func ComputeRiskReturn(rm *ReturnMatrix, riskFree float64, periodsPerYear int) []RiskReturnRow {
	rows := make([]RiskReturnRow, len(rm.Tickers))
	for j, ticker := range rm.Tickers {
		col := formulas.DropNaN(rm.Column(j))
		ret := formulas.Mean(col) * float64(periodsPerYear)
		dev := formulas.PopulationStdDev(col) * math.Sqrt(float64(periodsPerYear))

		sharpe := math.NaN()
		if dev > 0 {
			sharpe = (ret - riskFree) / dev
		}
		rows[j] = RiskReturnRow{Ticker: ticker, Return: ret, Deviation: dev, Sharpe: sharpe}
	}
	return rows
}

// ComputeCorrelation returns the Pearson correlation matrix of the return columns,
// each pair over its pairwise-complete observations.
func ComputeCorrelation(rm *ReturnMatrix) [][]float64 {
	k := len(rm.Tickers)
	cols := make([][]float64, k)
	for j := range cols {
		cols[j] = rm.Column(j)
	}

	corr := make([][]float64, k)
	for i := range corr {
		corr[i] = make([]float64, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			c := formulas.Correlation(cols[i], cols[j])
			corr[i][j] = c
			corr[j][i] = c
		}
	}
	return corr
}
