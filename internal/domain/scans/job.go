package scans

import "time"

// JobState enum for the per-analyzer state machine:
// queued -> running -> {succeeded | failed | timed_out}.
// Terminal states are sticky; once reached the state never changes again.
type JobState string

const (
	JobQueued    JobState = "queued"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
	JobTimedOut  JobState = "timed_out"
)

// Terminal reports whether the state admits no further transition
func (s JobState) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobTimedOut
}

// Job is the orchestration record for one requested analyzer within one scan.
// Mutated only by the orchestrator; read by callers polling for status.
type Job struct {
	ScanID      ScanID     `json:"scan_id"`
	Analyzer    string     `json:"analyzer"`
	State       JobState   `json:"state"`
	Attempts    int        `json:"attempts"`
	StartedAt   time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}
