// Package di provides dependency injection wiring and initialization.
package di

import (
	"github.com/aristath/frontier/internal/clientdata"
	"github.com/aristath/frontier/internal/database"
	"github.com/aristath/frontier/internal/modules/charts"
	"github.com/aristath/frontier/internal/modules/historical"
	"github.com/aristath/frontier/internal/modules/optimization"
	"github.com/aristath/frontier/internal/modules/universe"
	"github.com/aristath/frontier/internal/scheduler"
)

// Container holds all application dependencies.
// CacheDB and ClientDataRepo are nil when the price cache is disabled.
type Container struct {
	// Databases
	CacheDB *database.DB

	// Repositories
	ClientDataRepo *clientdata.Repository

	// Price providers; PriceProvider is the upstream wrapped by the cache when enabled
	UpstreamProvider historical.PriceProvider
	PriceProvider    historical.PriceProvider

	// Services
	TickerValidator  *universe.TickerValidator
	PriceFetcher     *historical.Fetcher
	QuoteService     *historical.QuoteService
	ChartsService    *charts.Service
	OptimizerService *optimization.OptimizerService

	// Background jobs
	Scheduler *scheduler.Scheduler
}

// JobInstances holds the registered maintenance jobs for manual triggering
type JobInstances struct {
	ClientDataCleanup scheduler.Job
	WALCheckpoint     scheduler.Job
}

// Close releases the container's resources
func (c *Container) Close() error {
	if c == nil || c.CacheDB == nil {
		return nil
	}
	return c.CacheDB.Close()
}
