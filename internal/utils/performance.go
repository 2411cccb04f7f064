package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// Stage is one timed step of a pipeline
type Stage struct {
	Name     string
	Duration time.Duration
}

// StageTimer measures consecutive pipeline stages
type StageTimer struct {
	start  time.Time
	last   time.Time
	stages []Stage
	log    zerolog.Logger
	now    func() time.Time
}

// NewStageTimer starts a timer; marks are logged at debug level on log
func NewStageTimer(log zerolog.Logger) *StageTimer {
	return newStageTimer(log, time.Now)
}

func newStageTimer(log zerolog.Logger, now func() time.Time) *StageTimer {
	start := now()
	return &StageTimer{start: start, last: start, log: log, now: now}
}

// Mark closes the current stage under name and returns its duration
func (t *StageTimer) Mark(name string) time.Duration {
	now := t.now()
	d := now.Sub(t.last)
	t.last = now
	t.stages = append(t.stages, Stage{Name: name, Duration: d})

	t.log.Debug().
		Str("stage", name).
		Dur("duration_ms", d).
		Msg("Stage completed")

	if d > 10*time.Second {
		t.log.Warn().
			Str("stage", name).
			Dur("duration", d).
			Msg("Slow stage detected (>10s)")
	}
	return d
}

// Stages returns the recorded stages in order
func (t *StageTimer) Stages() []Stage {
	return t.stages
}

// Total returns the time since the timer started up to the last mark
func (t *StageTimer) Total() time.Duration {
	return t.last.Sub(t.start)
}

// Millis returns stage durations in milliseconds keyed by stage name
func (t *StageTimer) Millis() map[string]float64 {
	out := make(map[string]float64, len(t.stages))
	for _, s := range t.stages {
		out[s.Name] += float64(s.Duration) / float64(time.Millisecond)
	}
	return out
}
