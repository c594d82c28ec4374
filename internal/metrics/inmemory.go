package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	SubmissionsFirst      uint64
	SubmissionsAccepted   uint64
	SubmissionsDuplicate  uint64
	SubmissionsInvalid    uint64
	SubmissionsFailed     uint64
	SubmitDurationCount   uint64
	SubmitDurationTotalNs int64
	CacheHits             uint64
	CacheMisses           uint64
	Resets                uint64
}

// InMemoryRecorder keeps counters in process memory.
type InMemoryRecorder struct {
	submissionsFirst      uint64
	submissionsAccepted   uint64
	submissionsDuplicate  uint64
	submissionsInvalid    uint64
	submissionsFailed     uint64
	submitDurationCount   uint64
	submitDurationTotalNs int64
	cacheHits             uint64
	cacheMisses           uint64
	resets                uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		SubmissionsFirst:      atomic.LoadUint64(&m.submissionsFirst),
		SubmissionsAccepted:   atomic.LoadUint64(&m.submissionsAccepted),
		SubmissionsDuplicate:  atomic.LoadUint64(&m.submissionsDuplicate),
		SubmissionsInvalid:    atomic.LoadUint64(&m.submissionsInvalid),
		SubmissionsFailed:     atomic.LoadUint64(&m.submissionsFailed),
		SubmitDurationCount:   atomic.LoadUint64(&m.submitDurationCount),
		SubmitDurationTotalNs: atomic.LoadInt64(&m.submitDurationTotalNs),
		CacheHits:             atomic.LoadUint64(&m.cacheHits),
		CacheMisses:           atomic.LoadUint64(&m.cacheMisses),
		Resets:                atomic.LoadUint64(&m.resets),
	}
}

// IncSubmission increments the counter for the given outcome.
// Unknown outcomes are counted as failures.
func (m *InMemoryRecorder) IncSubmission(outcome string) {
	switch outcome {
	case OutcomeFirst:
		atomic.AddUint64(&m.submissionsFirst, 1)
	case OutcomeAccepted:
		atomic.AddUint64(&m.submissionsAccepted, 1)
	case OutcomeDuplicate:
		atomic.AddUint64(&m.submissionsDuplicate, 1)
	case OutcomeInvalid:
		atomic.AddUint64(&m.submissionsInvalid, 1)
	default:
		atomic.AddUint64(&m.submissionsFailed, 1)
	}
}

// ObserveSubmitDuration records submit duration.
func (m *InMemoryRecorder) ObserveSubmitDuration(duration time.Duration) {
	atomic.AddUint64(&m.submitDurationCount, 1)
	atomic.AddInt64(&m.submitDurationTotalNs, duration.Nanoseconds())
}

// IncCacheHit increments cache hit counter.
func (m *InMemoryRecorder) IncCacheHit() {
	atomic.AddUint64(&m.cacheHits, 1)
}

// IncCacheMiss increments cache miss counter.
func (m *InMemoryRecorder) IncCacheMiss() {
	atomic.AddUint64(&m.cacheMisses, 1)
}

// IncReset increments the table reset counter.
func (m *InMemoryRecorder) IncReset() {
	atomic.AddUint64(&m.resets, 1)
}
