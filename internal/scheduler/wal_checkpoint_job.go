package scheduler

import (
	"github.com/rs/zerolog"
)

// walFrameThreshold is the WAL size above which a TRUNCATE checkpoint is forced
const walFrameThreshold = 1000

// WALDatabase is the subset of database.DB the checkpoint job needs
type WALDatabase interface {
	Name() string
	WALStatus() (frames, checkpointed int, err error)
	WALCheckpoint(mode string) error
}

// WALCheckpointJob keeps the cache database's write-ahead log from growing unbounded
type WALCheckpointJob struct {
	db  WALDatabase
	log zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(db WALDatabase, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checks the WAL size and truncates it when large
func (j *WALCheckpointJob) Run() error {
	frames, checkpointed, err := j.db.WALStatus()
	if err != nil {
		return err
	}

	if frames <= walFrameThreshold {
		j.log.Debug().
			Str("database", j.db.Name()).
			Int("wal_frames", frames).
			Msg("WAL checkpoint status OK")
		return nil
	}

	j.log.Warn().
		Str("database", j.db.Name()).
		Int("wal_frames", frames).
		Int("checkpointed", checkpointed).
		Msg("WAL file is large, forcing checkpoint")
	return j.db.WALCheckpoint("TRUNCATE")
}
