package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Submissions(t *testing.T) {
	m := NewInMemory()

	m.IncSubmission(OutcomeFirst)
	m.IncSubmission(OutcomeAccepted)
	m.IncSubmission(OutcomeAccepted)
	m.IncSubmission(OutcomeDuplicate)
	m.IncSubmission(OutcomeInvalid)
	m.IncSubmission(OutcomeError)
	m.IncSubmission("something-else")

	snap := m.Snapshot()
	if snap.SubmissionsFirst != 1 {
		t.Errorf("first = %d, want 1", snap.SubmissionsFirst)
	}
	if snap.SubmissionsAccepted != 2 {
		t.Errorf("accepted = %d, want 2", snap.SubmissionsAccepted)
	}
	if snap.SubmissionsDuplicate != 1 {
		t.Errorf("duplicate = %d, want 1", snap.SubmissionsDuplicate)
	}
	if snap.SubmissionsInvalid != 1 {
		t.Errorf("invalid = %d, want 1", snap.SubmissionsInvalid)
	}
	if snap.SubmissionsFailed != 2 {
		t.Errorf("failed = %d, want 2", snap.SubmissionsFailed)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncCacheHit()
			m.IncCacheMiss()
			m.ObserveSubmitDuration(2 * time.Millisecond)
		}()
	}
	wg.Wait()
	m.IncReset()

	snap := m.Snapshot()
	if snap.CacheHits != 50 || snap.CacheMisses != 50 {
		t.Errorf("cache counters = %d/%d, want 50/50", snap.CacheHits, snap.CacheMisses)
	}
	if snap.SubmitDurationCount != 50 {
		t.Errorf("duration count = %d, want 50", snap.SubmitDurationCount)
	}
	if snap.SubmitDurationTotalNs != int64(50*2*time.Millisecond) {
		t.Errorf("duration total = %d", snap.SubmitDurationTotalNs)
	}
	if snap.Resets != 1 {
		t.Errorf("resets = %d, want 1", snap.Resets)
	}
}
