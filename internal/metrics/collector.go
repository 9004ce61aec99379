// Package metrics provides in-memory pipeline timing collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// StageMetrics holds aggregated timings for one pipeline stage.
type StageMetrics struct {
	Count     int64
	Items     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// StageSnapshot provides computed stats from raw metrics.
type StageSnapshot struct {
	Count       int64   `json:"count"`
	Items       int64   `json:"items"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot represents collected timings at a point in time.
type Snapshot struct {
	ElapsedSeconds float64        `json:"elapsed_seconds"`
	Normalize      *StageSnapshot `json:"normalize,omitempty"`
	Index          *StageSnapshot `json:"index,omitempty"`
	Score          *StageSnapshot `json:"score,omitempty"`
	Aggregate      *StageSnapshot `json:"aggregate,omitempty"`
	Rank           *StageSnapshot `json:"rank,omitempty"`
	Publish        *StageSnapshot `json:"publish,omitempty"`
}

// Stage names for the collector.
const (
	StageNormalize = "normalize"
	StageIndex     = "index"
	StageScore     = "score"
	StageAggregate = "aggregate"
	StageRank      = "rank"
	StagePublish   = "publish"
)

// Collector aggregates in-memory stage timings.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	stages    map[string]*StageMetrics
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		stages:    make(map[string]*StageMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for a stage.
// Caller must hold write lock.
func (c *Collector) getOrCreate(stage string) *StageMetrics {
	m, ok := c.stages[stage]
	if !ok {
		m = &StageMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.stages[stage] = m
	}
	return m
}

// RecordTiming records one run of a stage that processed items records.
func (c *Collector) RecordTiming(stage string, duration time.Duration, items int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(stage)
	m.Count++
	m.Items += int64(items)
	m.TotalTime += duration

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Time runs fn as stage and records its duration and item count.
func (c *Collector) Time(stage string, fn func() int) {
	start := time.Now()
	items := fn()
	c.RecordTiming(stage, time.Since(start), items)
}

// snapshotStage creates a snapshot for a stage, returning nil if no data.
func snapshotStage(m *StageMetrics) *StageSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &StageSnapshot{
		Count:       m.Count,
		Items:       m.Items,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all stages.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		ElapsedSeconds: time.Since(c.startTime).Seconds(),
		Normalize:      snapshotStage(c.stages[StageNormalize]),
		Index:          snapshotStage(c.stages[StageIndex]),
		Score:          snapshotStage(c.stages[StageScore]),
		Aggregate:      snapshotStage(c.stages[StageAggregate]),
		Rank:           snapshotStage(c.stages[StageRank]),
		Publish:        snapshotStage(c.stages[StagePublish]),
	}
}
