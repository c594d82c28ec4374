// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Submission outcomes.
const (
	OutcomeFirst     = "first"
	OutcomeAccepted  = "accepted"
	OutcomeDuplicate = "duplicate"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Submission metrics
	IncSubmission(outcome string)
	ObserveSubmitDuration(duration time.Duration)

	// Read path cache metrics
	IncCacheHit()
	IncCacheMiss()

	// Admin metrics
	IncReset()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
