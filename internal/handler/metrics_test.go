package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tressure/backend/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncSubmission(metrics.OutcomeFirst)
	recorder.IncSubmission(metrics.OutcomeAccepted)
	recorder.IncSubmission(metrics.OutcomeAccepted)
	recorder.IncSubmission(metrics.OutcomeDuplicate)
	recorder.ObserveSubmitDuration(1500 * time.Millisecond)
	recorder.IncCacheHit()
	recorder.IncReset()

	rec := httptest.NewRecorder()
	NewMetricsHandler(recorder).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	body := rec.Body.String()
	for _, line := range []string{
		`tressure_submissions_total{outcome="first"} 1`,
		`tressure_submissions_total{outcome="accepted"} 2`,
		`tressure_submissions_total{outcome="duplicate"} 1`,
		`tressure_submissions_total{outcome="invalid"} 0`,
		`tressure_submit_duration_seconds_count 1`,
		`tressure_submit_duration_seconds_sum 1.500000`,
		`tressure_cache_hits_total 1`,
		`tressure_resets_total 1`,
	} {
		if !strings.Contains(body, line+"\n") {
			t.Errorf("missing metric line %q in:\n%s", line, body)
		}
	}
}

func TestMetricsHandler_NilSnapshotter(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
