package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	requestStartedTotal   atomic.Uint64
	requestCompletedTotal atomic.Uint64
	requestFailedTotal    atomic.Uint64
	matchesReturnedTotal  atomic.Uint64
	candidatesUpsertTotal atomic.Uint64

	requestDuration = newHistogram([]float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000})
)

// IncRequestStarted increments the started counter.
func IncRequestStarted() {
	requestStartedTotal.Add(1)
}

// IncRequestCompleted increments the completed counter.
func IncRequestCompleted() {
	requestCompletedTotal.Add(1)
}

// IncRequestFailed increments the failed counter.
func IncRequestFailed() {
	requestFailedTotal.Add(1)
}

// AddMatchesReturned records how many matches a completed search produced.
func AddMatchesReturned(n int) {
	if n > 0 {
		matchesReturnedTotal.Add(uint64(n))
	}
}

// IncCandidateUpsert increments the upsert counter.
func IncCandidateUpsert() {
	candidatesUpsertTotal.Add(1)
}

// ObserveRequestDurationMs records a pipeline duration in milliseconds.
func ObserveRequestDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	requestDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "pipeline_request_started_total", "Total pipeline requests started", requestStartedTotal.Load())
	writeCounter(&buf, "pipeline_request_completed_total", "Total pipeline requests completed", requestCompletedTotal.Load())
	writeCounter(&buf, "pipeline_request_failed_total", "Total pipeline requests failed", requestFailedTotal.Load())
	writeCounter(&buf, "pipeline_matches_returned_total", "Total match results returned", matchesReturnedTotal.Load())
	writeCounter(&buf, "pipeline_candidate_upserts_total", "Total candidate upserts applied", candidatesUpsertTotal.Load())
	writeHistogram(&buf, "pipeline_request_duration_ms", "Pipeline request duration in milliseconds", requestDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
