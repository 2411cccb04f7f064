package clientdata

import (
	"time"

	"github.com/rs/zerolog"
)

// CleanupJob prunes cache entries whose stale retention has run out.
type CleanupJob struct {
	repo      *Repository
	retention time.Duration
	log       zerolog.Logger
}

// NewCleanupJob creates the cache pruning job. Entries are deleted once they
// have been expired for longer than retention.
func NewCleanupJob(repo *Repository, retention time.Duration, log zerolog.Logger) *CleanupJob {
	if retention < 0 {
		retention = 0
	}
	return &CleanupJob{
		repo:      repo,
		retention: retention,
		log:       log.With().Str("job", "price_cache_cleanup").Logger(),
	}
}

// Run prunes every cache table and logs what is left behind.
func (j *CleanupJob) Run() error {
	results, err := j.repo.PruneAll(j.retention)
	if err != nil {
		j.log.Error().Err(err).Msg("Failed to prune price cache")
		return err
	}

	for _, table := range AllTables {
		stats, err := j.repo.Stats(table)
		if err != nil {
			j.log.Warn().Err(err).Str("table", table).Msg("Failed to read cache stats")
			continue
		}
		event := j.log.Debug()
		if results[table] > 0 {
			event = j.log.Info()
		}
		event.
			Str("table", table).
			Int64("pruned", results[table]).
			Int64("entries", stats.Entries).
			Int64("stale", stats.Expired).
			Dur("retention", j.retention).
			Msg("Price cache pruned")
	}
	return nil
}

// Name returns the job name for scheduling and logging.
func (j *CleanupJob) Name() string {
	return "price_cache_cleanup"
}
