package di

import (
	"fmt"

	"github.com/aristath/frontier/internal/clientdata"
	"github.com/aristath/frontier/internal/config"
	"github.com/aristath/frontier/internal/scheduler"
	"github.com/rs/zerolog"
)

// walCheckpointSchedule runs the checkpoint check every 15 minutes
const walCheckpointSchedule = "0 */15 * * * *"

// RegisterJobs creates the scheduler and registers the cache maintenance jobs.
// The scheduler is not started.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	if container == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}

	container.Scheduler = scheduler.New(log)
	instances := &JobInstances{}

	if container.CacheDB == nil {
		return instances, nil
	}

	cleanup := clientdata.NewCleanupJob(container.ClientDataRepo, cfg.Cache.StaleRetention, log)
	if err := container.Scheduler.AddJob(cfg.Cache.CleanupSchedule, cleanup); err != nil {
		return nil, err
	}
	instances.ClientDataCleanup = cleanup

	walCheckpoint := scheduler.NewWALCheckpointJob(container.CacheDB, log)
	if err := container.Scheduler.AddJob(walCheckpointSchedule, walCheckpoint); err != nil {
		return nil, err
	}
	instances.WALCheckpoint = walCheckpoint

	return instances, nil
}
