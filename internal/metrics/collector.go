// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Failures  int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Failures    int64   `json:"failures"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot represents the full server statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64            `json:"uptime_seconds"`
	UpstreamFetch *OperationSnapshot `json:"upstream_fetch,omitempty"`
	StoreRead     *OperationSnapshot `json:"store_read,omitempty"`
	StoreInsert   *OperationSnapshot `json:"store_insert,omitempty"`
	MigrationRun  *OperationSnapshot `json:"migration_run,omitempty"`
	SummarySave   *OperationSnapshot `json:"summary_save,omitempty"`
}

// Operation names for the collector.
const (
	OpUpstreamFetch = "upstream_fetch"
	OpStoreRead     = "store_read"
	OpStoreInsert   = "store_insert"
	OpMigrationRun  = "migration_run"
	OpSummarySave   = "summary_save"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe. A nil *Collector records nothing.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// Observe records duration since start, as a failure when err is non-nil.
//
//	start := time.Now()
//	err := doThing()
//	collector.Observe(metrics.OpStoreInsert, start, err)
func (c *Collector) Observe(op string, start time.Time, err error) {
	c.record(op, time.Since(start), err != nil)
}

func (c *Collector) record(op string, duration time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	if failed {
		m.Failures++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}

	return &OperationSnapshot{
		Count:       m.Count,
		Failures:    m.Failures,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		UpstreamFetch: snapshotOp(c.ops[OpUpstreamFetch]),
		StoreRead:     snapshotOp(c.ops[OpStoreRead]),
		StoreInsert:   snapshotOp(c.ops[OpStoreInsert]),
		MigrationRun:  snapshotOp(c.ops[OpMigrationRun]),
		SummarySave:   snapshotOp(c.ops[OpSummarySave]),
	}
}
