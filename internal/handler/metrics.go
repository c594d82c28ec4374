package handler

import (
	"fmt"
	"net/http"

	"github.com/tressure/backend/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "tressure_submissions_total{outcome=\"first\"} %d\n", snap.SubmissionsFirst)
	writeMetric(w, "tressure_submissions_total{outcome=\"accepted\"} %d\n", snap.SubmissionsAccepted)
	writeMetric(w, "tressure_submissions_total{outcome=\"duplicate\"} %d\n", snap.SubmissionsDuplicate)
	writeMetric(w, "tressure_submissions_total{outcome=\"invalid\"} %d\n", snap.SubmissionsInvalid)
	writeMetric(w, "tressure_submissions_total{outcome=\"error\"} %d\n", snap.SubmissionsFailed)
	writeMetric(w, "tressure_submit_duration_seconds_count %d\n", snap.SubmitDurationCount)
	writeMetric(w, "tressure_submit_duration_seconds_sum %.6f\n", float64(snap.SubmitDurationTotalNs)/1e9)

	writeMetric(w, "tressure_cache_hits_total %d\n", snap.CacheHits)
	writeMetric(w, "tressure_cache_misses_total %d\n", snap.CacheMisses)

	writeMetric(w, "tressure_resets_total %d\n", snap.Resets)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
