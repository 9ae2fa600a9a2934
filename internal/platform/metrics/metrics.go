// Package metrics provides observability for the simulation server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers performance metrics.
type Collector struct {
	// Step metrics
	StepCount      int64
	StepLatencySum int64 // nanoseconds
	StepLatencyMax int64
	LastStepTime   time.Time

	// Episode metrics
	EpisodesCompleted int64
	EpisodeWriteErrs  int64

	// Event persistence metrics
	EventsWritten    int64
	EventWriteErrors int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordStep records one simulation step.
func (c *Collector) RecordStep(latency time.Duration) {
	atomic.AddInt64(&c.StepCount, 1)
	atomic.AddInt64(&c.StepLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.StepLatencyMax) {
		atomic.StoreInt64(&c.StepLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastStepTime = time.Now()
	c.mu.Unlock()
}

// RecordEpisode records a completed episode and whether persisting its
// summary failed.
func (c *Collector) RecordEpisode(persistErr error) {
	atomic.AddInt64(&c.EpisodesCompleted, 1)
	if persistErr != nil {
		atomic.AddInt64(&c.EpisodeWriteErrs, 1)
	}
}

// RecordEventWrite records an event write to the database.
func (c *Collector) RecordEventWrite(err error) {
	atomic.AddInt64(&c.EventsWritten, 1)
	if err != nil {
		atomic.AddInt64(&c.EventWriteErrors, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records an outgoing WebSocket broadcast.
func (c *Collector) RecordWSMessage() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stepCount := atomic.LoadInt64(&c.StepCount)

	var stepAvg float64
	if stepCount > 0 {
		stepAvg = float64(atomic.LoadInt64(&c.StepLatencySum)) / float64(stepCount) / 1e6 // ms
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"step": map[string]interface{}{
			"count":          stepCount,
			"avg_latency_ms": stepAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.StepLatencyMax)) / 1e6,
			"last_step":      c.LastStepTime.Format(time.RFC3339),
		},

		"episodes": map[string]interface{}{
			"completed":    atomic.LoadInt64(&c.EpisodesCompleted),
			"write_errors": atomic.LoadInt64(&c.EpisodeWriteErrs),
		},

		"events": map[string]interface{}{
			"written": atomic.LoadInt64(&c.EventsWritten),
			"errors":  atomic.LoadInt64(&c.EventWriteErrors),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP ecosim_step_count Total simulation steps\n")
		fmt.Fprintf(w, "# TYPE ecosim_step_count counter\n")
		fmt.Fprintf(w, "ecosim_step_count %d\n\n", atomic.LoadInt64(&c.StepCount))

		fmt.Fprintf(w, "# HELP ecosim_step_latency_max_ms Maximum step latency\n")
		fmt.Fprintf(w, "# TYPE ecosim_step_latency_max_ms gauge\n")
		fmt.Fprintf(w, "ecosim_step_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.StepLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP ecosim_episodes_completed Total completed episodes\n")
		fmt.Fprintf(w, "# TYPE ecosim_episodes_completed counter\n")
		fmt.Fprintf(w, "ecosim_episodes_completed %d\n\n", atomic.LoadInt64(&c.EpisodesCompleted))

		fmt.Fprintf(w, "# HELP ecosim_events_written Total events written\n")
		fmt.Fprintf(w, "# TYPE ecosim_events_written counter\n")
		fmt.Fprintf(w, "ecosim_events_written %d\n\n", atomic.LoadInt64(&c.EventsWritten))

		fmt.Fprintf(w, "# HELP ecosim_event_write_errors Total event write errors\n")
		fmt.Fprintf(w, "# TYPE ecosim_event_write_errors counter\n")
		fmt.Fprintf(w, "ecosim_event_write_errors %d\n\n", atomic.LoadInt64(&c.EventWriteErrors))

		fmt.Fprintf(w, "# HELP ecosim_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE ecosim_ws_connections gauge\n")
		fmt.Fprintf(w, "ecosim_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP ecosim_ws_messages_total Total WebSocket broadcasts\n")
		fmt.Fprintf(w, "# TYPE ecosim_ws_messages_total counter\n")
		fmt.Fprintf(w, "ecosim_ws_messages_total %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
