package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/frontier/internal/clientdata"
	"github.com/aristath/frontier/internal/modules/historical"
	"github.com/aristath/frontier/internal/scheduler"
	"github.com/aristath/frontier/internal/utils"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthChecker is a dependency that can report its own health
type HealthChecker interface {
	Name() string
	QuickCheck(ctx context.Context) error
}

// CacheStatsReader reports entry counts for a cache table
type CacheStatsReader interface {
	Stats(table string) (clientdata.TableStats, error)
}

// JobLister reports the background jobs and their last outcome
type JobLister interface {
	Jobs() []scheduler.JobStatus
}

// SystemHandlers handles system monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	cacheDB     HealthChecker
	cacheStats  CacheStatsReader
	jobs        JobLister
	startupTime time.Time
	hostStats   func() (cpuPercent, memPercent float64)
}

// NewSystemHandlers creates a new system handlers instance. cacheDB may be nil.
func NewSystemHandlers(log zerolog.Logger, cacheDB HealthChecker) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		cacheDB:     cacheDB,
		startupTime: time.Now(),
	}
	h.hostStats = h.getSystemStats
	return h
}

// WithCacheStats adds price cache entry counts to the status report
func (h *SystemHandlers) WithCacheStats(stats CacheStatsReader) *SystemHandlers {
	h.cacheStats = stats
	return h
}

// WithJobs adds the scheduler's job table to the status report
func (h *SystemHandlers) WithJobs(jobs JobLister) *SystemHandlers {
	h.jobs = jobs
	return h
}

// SystemStatusResponse represents the process and host diagnostics
type SystemStatusResponse struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	GoVersion     string        `json:"go_version"`
	NumCPU        int           `json:"num_cpu"`
	Goroutines    int           `json:"goroutines"`
	HeapAllocMB   float64       `json:"heap_alloc_mb"`
	CPUPercent    float64       `json:"cpu_percent"`
	MemoryPercent float64       `json:"memory_percent"`
	Cache         DatabaseCheck `json:"cache"`

	Jobs []scheduler.JobStatus `json:"jobs"`
}

// DatabaseCheck is the outcome of a database health probe
type DatabaseCheck struct {
	Enabled bool   `json:"enabled"`
	Name    string `json:"name,omitempty"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`

	PriceSeries *clientdata.TableStats `json:"price_series,omitempty"`
}

// GetSystemStatusSnapshot returns a snapshot of the current system status
func (h *SystemHandlers) GetSystemStatusSnapshot(ctx context.Context) SystemStatusResponse {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	cpuPercent, memPercent := h.hostStats()

	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		GoVersion:     runtime.Version(),
		NumCPU:        runtime.NumCPU(),
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(ms.HeapAlloc) / 1024 / 1024,
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
	}

	if h.cacheDB != nil {
		response.Cache = DatabaseCheck{Enabled: true, Name: h.cacheDB.Name(), Healthy: true}

		checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := h.cacheDB.QuickCheck(checkCtx); err != nil {
			h.log.Warn().Err(err).Str("database", h.cacheDB.Name()).Msg("Cache database check failed")
			response.Cache.Healthy = false
			response.Cache.Error = err.Error()
			response.Status = "degraded"
		}
	}

	if h.cacheStats != nil && response.Cache.Healthy {
		stats, err := h.cacheStats.Stats(historical.PriceSeriesTable)
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to read price cache stats")
		} else {
			response.Cache.PriceSeries = &stats
		}
	}

	response.Jobs = []scheduler.JobStatus{}
	if h.jobs != nil {
		response.Jobs = h.jobs.Jobs()
	}

	return response
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")
	utils.WriteJSON(w, http.StatusOK, h.GetSystemStatusSnapshot(r.Context()), h.log)
}

// getSystemStats calculates CPU and RAM usage percentages
// over a short sampling window
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
