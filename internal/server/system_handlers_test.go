package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/frontier/internal/clientdata"
	"github.com/aristath/frontier/internal/database"
	"github.com/aristath/frontier/internal/modules/historical"
	"github.com/aristath/frontier/internal/scheduler"
	testutil "github.com/aristath/frontier/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	err error
}

func (f fakeChecker) Name() string { return "cache" }

func (f fakeChecker) QuickCheck(ctx context.Context) error { return f.err }

func statusOf(t *testing.T, h *SystemHandlers) SystemStatusResponse {
	t.Helper()
	w := httptest.NewRecorder()
	h.HandleSystemStatus(w, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSystemHandlers_HandleSystemStatus(t *testing.T) {
	tests := []struct {
		name        string
		cacheDB     HealthChecker
		wantStatus  string
		wantEnabled bool
		wantHealthy bool
	}{
		{"cache disabled", nil, "healthy", false, false},
		{"cache healthy", fakeChecker{}, "healthy", true, true},
		{"cache failing", fakeChecker{err: errors.New("disk I/O error")}, "degraded", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandlers(zerolog.Nop(), tt.cacheDB)
			h.hostStats = func() (float64, float64) { return 12.5, 40 }

			resp := statusOf(t, h)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantEnabled, resp.Cache.Enabled)
			assert.Equal(t, tt.wantHealthy, resp.Cache.Healthy)
			assert.Equal(t, 12.5, resp.CPUPercent)
			assert.Equal(t, 40.0, resp.MemoryPercent)
			assert.Positive(t, resp.NumCPU)
			assert.Positive(t, resp.Goroutines)
			assert.NotEmpty(t, resp.GoVersion)
		})
	}
}

func TestSystemHandlers_RealDatabase(t *testing.T) {
	db, err := database.New(database.Config{
		Path:    "file::memory:",
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	require.NoError(t, err)
	defer db.Close()

	h := NewSystemHandlers(zerolog.Nop(), db)
	h.hostStats = func() (float64, float64) { return 0, 0 }

	resp := statusOf(t, h)
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "cache", resp.Cache.Name)
	assert.True(t, resp.Cache.Healthy)

	require.NoError(t, db.Close())
	resp = statusOf(t, h)
	assert.Equal(t, "degraded", resp.Status)
	assert.NotEmpty(t, resp.Cache.Error)
}

func TestSystemHandlers_CacheStats(t *testing.T) {
	db := testutil.NewTestDB(t, "cache")
	repo := clientdata.NewRepository(db.Conn())
	require.NoError(t, repo.Store(historical.PriceSeriesTable, "AAPL:10y:1mo", []int{1}, time.Hour))
	require.NoError(t, repo.Store(historical.PriceSeriesTable, "MSFT:10y:1mo", []int{1}, -time.Hour))

	h := NewSystemHandlers(zerolog.Nop(), db).WithCacheStats(repo)
	h.hostStats = func() (float64, float64) { return 0, 0 }

	resp := statusOf(t, h)
	require.NotNil(t, resp.Cache.PriceSeries)
	assert.Equal(t, clientdata.TableStats{Entries: 2, Expired: 1}, *resp.Cache.PriceSeries)

	h.WithCacheStats(nil)
	assert.Nil(t, statusOf(t, h).Cache.PriceSeries)
}

type noopJob struct{}

func (noopJob) Run() error   { return nil }
func (noopJob) Name() string { return "noop" }

func TestSystemHandlers_Jobs(t *testing.T) {
	h := NewSystemHandlers(zerolog.Nop(), nil)
	h.hostStats = func() (float64, float64) { return 0, 0 }
	assert.Empty(t, statusOf(t, h).Jobs)

	sched := scheduler.New(zerolog.Nop())
	require.NoError(t, sched.AddJob("@hourly", noopJob{}))
	require.NoError(t, sched.RunNow(noopJob{}))
	h.WithJobs(sched)

	jobs := statusOf(t, h).Jobs
	require.Len(t, jobs, 1)
	assert.Equal(t, "noop", jobs[0].Name)
	assert.Equal(t, 1, jobs[0].Runs)
}

func TestSystemHandlers_HostStats(t *testing.T) {
	h := NewSystemHandlers(zerolog.Nop(), nil)
	cpuPercent, memPercent := h.getSystemStats()
	assert.GreaterOrEqual(t, cpuPercent, 0.0)
	assert.GreaterOrEqual(t, memPercent, 0.0)
}
