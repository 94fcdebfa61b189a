package docsession

import "sync/atomic"

// MetricID identifies one outcome counter.
type MetricID uint8

// Load and save outcome counters. The load-side split deliberately separates
// "no session presented" (MetricLoadFresh, MetricLoadMiss) from "session
// presented and rejected" (MetricLoadExpired, MetricLoadRejected): the caller
// sees an identical fresh session either way, so these counters are the only
// place a tampered or stale cookie is distinguishable from a first visit.
const (
	// MetricLoadFresh counts loads where the request carried no session cookie.
	MetricLoadFresh MetricID = iota
	// MetricLoadMiss counts loads where the cookie's key had no document.
	MetricLoadMiss
	// MetricLoadExpired counts loads that found an expired document.
	MetricLoadExpired
	// MetricLoadRejected counts loads that found an undecodable or ill-typed payload.
	MetricLoadRejected
	// MetricLoadHit counts loads that restored a stored session.
	MetricLoadHit
	// MetricSaveWritten counts saves that wrote a document.
	MetricSaveWritten
	// MetricSaveDeleted counts saves that deleted a document.
	MetricSaveDeleted
	// MetricSaveSkipped counts saves of never-populated sessions (no-ops).
	MetricSaveSkipped

	metricIDCount
)

const cacheLineSize = 64

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the outcome counters. All methods are nil-safe and lock-free;
// a disabled Metrics never allocates on the hot path.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics instance honoring cfg.Enabled.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments one counter. No-op when disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter. Disabled metrics yield an empty map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
