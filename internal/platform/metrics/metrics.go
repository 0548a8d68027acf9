// Package metrics provides observability for the sanctuary server.
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
	// Heartbeat metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64
	LastTickTime   time.Time

	// Snapshot persistence metrics
	SnapshotWrites    int64
	SnapshotLatSum    int64
	SnapshotLatMax    int64
	SnapshotWriteErrs int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// LLM metrics
	LLMRequests   int64
	LLMFallbacks  int64
	LLMTokensUsed int64
	LLMCostUSD    float64
	LLMLatencySum int64

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

// RecordTick records a heartbeat cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > atomic.LoadInt64(&c.TickLatencyMax) {
		atomic.StoreInt64(&c.TickLatencyMax, int64(latency))
	}

	c.mu.Lock()
	c.LastTickTime = time.Now()
	c.mu.Unlock()
}

// RecordSnapshotWrite records a snapshot persistence call.
func (c *Collector) RecordSnapshotWrite(latency time.Duration, err error) {
	atomic.AddInt64(&c.SnapshotWrites, 1)
	atomic.AddInt64(&c.SnapshotLatSum, int64(latency))

	if int64(latency) > atomic.LoadInt64(&c.SnapshotLatMax) {
		atomic.StoreInt64(&c.SnapshotLatMax, int64(latency))
	}

	if err != nil {
		atomic.AddInt64(&c.SnapshotWriteErrs, 1)
	}
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// RecordLLMCall records an LLM API call.
func (c *Collector) RecordLLMCall(tokens int, cost float64, latency time.Duration) {
	atomic.AddInt64(&c.LLMRequests, 1)
	atomic.AddInt64(&c.LLMTokensUsed, int64(tokens))
	atomic.AddInt64(&c.LLMLatencySum, int64(latency))

	c.mu.Lock()
	c.LLMCostUSD += cost
	c.mu.Unlock()
}

// RecordLLMFallback records a turn served by the fallback line.
func (c *Collector) RecordLLMFallback() {
	atomic.AddInt64(&c.LLMFallbacks, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tickCount := atomic.LoadInt64(&c.TickCount)
	snapshotWrites := atomic.LoadInt64(&c.SnapshotWrites)
	llmRequests := atomic.LoadInt64(&c.LLMRequests)

	var tickAvg, snapAvg, llmAvg float64
	if tickCount > 0 {
		tickAvg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(tickCount) / 1e6 // ms
	}
	if snapshotWrites > 0 {
		snapAvg = float64(atomic.LoadInt64(&c.SnapshotLatSum)) / float64(snapshotWrites) / 1e6
	}
	if llmRequests > 0 {
		llmAvg = float64(atomic.LoadInt64(&c.LLMLatencySum)) / float64(llmRequests) / 1e9 // seconds
	}

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"tick": map[string]interface{}{
			"count":          tickCount,
			"avg_latency_ms": tickAvg,
			"max_latency_ms": float64(atomic.LoadInt64(&c.TickLatencyMax)) / 1e6,
			"last_tick":      c.LastTickTime.Format(time.RFC3339),
		},

		"snapshots": map[string]interface{}{
			"written":          snapshotWrites,
			"avg_write_lat_ms": snapAvg,
			"max_write_lat_ms": float64(atomic.LoadInt64(&c.SnapshotLatMax)) / 1e6,
			"errors":           atomic.LoadInt64(&c.SnapshotWriteErrs),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},

		"llm": map[string]interface{}{
			"requests":        llmRequests,
			"fallbacks":       atomic.LoadInt64(&c.LLMFallbacks),
			"tokens_used":     atomic.LoadInt64(&c.LLMTokensUsed),
			"cost_usd":        c.LLMCostUSD,
			"avg_latency_sec": llmAvg,
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

		fmt.Fprintf(w, "# HELP sanctuary_tick_count Total heartbeat cycles\n")
		fmt.Fprintf(w, "# TYPE sanctuary_tick_count counter\n")
		fmt.Fprintf(w, "sanctuary_tick_count %d\n\n", atomic.LoadInt64(&c.TickCount))

		fmt.Fprintf(w, "# HELP sanctuary_tick_latency_max_ms Maximum heartbeat latency\n")
		fmt.Fprintf(w, "# TYPE sanctuary_tick_latency_max_ms gauge\n")
		fmt.Fprintf(w, "sanctuary_tick_latency_max_ms %.2f\n\n", float64(atomic.LoadInt64(&c.TickLatencyMax))/1e6)

		fmt.Fprintf(w, "# HELP sanctuary_snapshot_writes Total snapshot writes\n")
		fmt.Fprintf(w, "# TYPE sanctuary_snapshot_writes counter\n")
		fmt.Fprintf(w, "sanctuary_snapshot_writes %d\n\n", atomic.LoadInt64(&c.SnapshotWrites))

		fmt.Fprintf(w, "# HELP sanctuary_snapshot_write_errors Total snapshot write errors\n")
		fmt.Fprintf(w, "# TYPE sanctuary_snapshot_write_errors counter\n")
		fmt.Fprintf(w, "sanctuary_snapshot_write_errors %d\n\n", atomic.LoadInt64(&c.SnapshotWriteErrs))

		fmt.Fprintf(w, "# HELP sanctuary_ws_connections_active Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE sanctuary_ws_connections_active gauge\n")
		fmt.Fprintf(w, "sanctuary_ws_connections_active %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP sanctuary_llm_requests Total LLM requests\n")
		fmt.Fprintf(w, "# TYPE sanctuary_llm_requests counter\n")
		fmt.Fprintf(w, "sanctuary_llm_requests %d\n\n", atomic.LoadInt64(&c.LLMRequests))

		fmt.Fprintf(w, "# HELP sanctuary_llm_fallbacks Total fallback-line turns\n")
		fmt.Fprintf(w, "# TYPE sanctuary_llm_fallbacks counter\n")
		fmt.Fprintf(w, "sanctuary_llm_fallbacks %d\n", atomic.LoadInt64(&c.LLMFallbacks))
	}
}
