package runner

import (
	"time"

	"kiln/internal/tree"
)

// TaskResult records the outcome of one task in a run.
type TaskResult struct {
	Item     string
	Plugin   string
	Status   tree.Status
	Phase    string
	Err      error
	Duration time.Duration
}

// Report summarizes a publish run. Results appear in execution order.
type Report struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Published  int
	Failed     int
	Skipped    int
	Results    []TaskResult
}

// Duration returns the wall-clock span of the run.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Succeeded reports whether every executed task finished cleanly.
func (r *Report) Succeeded() bool {
	return r.Failed == 0
}
