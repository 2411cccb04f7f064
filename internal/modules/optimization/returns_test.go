package optimization

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/aristath/frontier/internal/domain"
	"github.com/aristath/frontier/internal/modules/historical"
	testutil "github.com/aristath/frontier/internal/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeReturns_Simple(t *testing.T) {
	pm := historical.BuildPriceMatrix([]string{"AAA"}, [][]domain.PricePoint{
		testutil.MonthlySeries(testutil.FixtureStart, 100, 110, 99),
	})

	rm, err := ComputeReturns(pm)

	require.NoError(t, err)
	require.Equal(t, 2, rm.Rows())
	assert.InDelta(t, 0.10, rm.Values[0][0], 1e-12)
	assert.InDelta(t, -0.10, rm.Values[1][0], 1e-12)
	assert.Equal(t, pm.Dates[1:], rm.Dates)
}

func TestComputeReturns_ElevenPricesGiveTenRows(t *testing.T) {
	pm := historical.BuildPriceMatrix([]string{"AAPL", "MSFT"}, [][]domain.PricePoint{
		testutil.IncreasingSeries(testutil.FixtureStart, 11, 100, 2),
		testutil.IncreasingSeries(testutil.FixtureStart, 11, 50, 1),
	})

	rm, err := ComputeReturns(pm)

	require.NoError(t, err)
	assert.Equal(t, 10, rm.Rows())
	assert.Equal(t, []string{"AAPL", "MSFT"}, rm.Tickers)
}

func TestComputeReturns_GapsAndLeadingMissing(t *testing.T) {
	start := testutil.FixtureStart
	// BBB starts one month late; AAA misses its third month
	pm := historical.BuildPriceMatrix([]string{"AAA", "BBB"}, [][]domain.PricePoint{
		{
			{Date: start, Price: 10},
			{Date: start.AddDate(0, 1, 0), Price: 11},
			{Date: start.AddDate(0, 3, 0), Price: 12.1},
		},
		testutil.MonthlySeries(start.AddDate(0, 1, 0), 20, 21, 22),
	})

	rm, err := ComputeReturns(pm)

	require.NoError(t, err)
	require.Equal(t, 3, rm.Rows())
	// Row for month 1: AAA defined, BBB has no prior price
	assert.InDelta(t, 0.1, rm.Values[0][0], 1e-12)
	assert.True(t, math.IsNaN(rm.Values[0][1]))
	// Month 2: AAA padded -> 0 return
	assert.Equal(t, 0.0, rm.Values[1][0])
	assert.InDelta(t, 0.05, rm.Values[1][1], 1e-12)
	// Month 3: AAA differenced against padded price
	assert.InDelta(t, 0.1, rm.Values[2][0], 1e-12)
}

func TestComputeReturns_Insufficient(t *testing.T) {
	pm := historical.BuildPriceMatrix([]string{"AAA"}, [][]domain.PricePoint{
		testutil.MonthlySeries(testutil.FixtureStart, 100),
	})

	_, err := ComputeReturns(pm)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientData))
}

func TestPortfolioReturns(t *testing.T) {
	rm := &ReturnMatrix{
		Tickers: []string{"A", "B"},
		Dates:   []time.Time{testutil.FixtureStart, testutil.FixtureStart.AddDate(0, 1, 0)},
		Values:  [][]float64{{0.1, 0.2}, {math.NaN(), 0.1}},
	}

	got := rm.PortfolioReturns([]float64{0.25, 0.75})

	assert.InDelta(t, 0.175, got[0], 1e-12)
	assert.True(t, math.IsNaN(got[1]))
}
