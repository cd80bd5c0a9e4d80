package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	barsProcessed atomic.Uint64
	ordersEmitted atomic.Uint64
	ordersFilled  atomic.Uint64
	errorsTotal   atomic.Uint64

	// Latency tracking
	latencySumNs atomic.Int64
	latencyCount atomic.Uint64

	// Gauges
	feedConnected atomic.Int32 // 1 = connected, 0 = down
	reconnects    atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordBar records one processed bar with its pipeline latency.
func (m *Metrics) RecordBar(latencyNs int64) {
	m.barsProcessed.Add(1)
	m.latencySumNs.Add(latencyNs)
	m.latencyCount.Add(1)
}

// RecordError records an error occurrence.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordOrderEmitted records an order request produced by the strategy.
func (m *Metrics) RecordOrderEmitted() {
	m.ordersEmitted.Add(1)
}

// RecordOrderFilled records a filled order.
func (m *Metrics) RecordOrderFilled() {
	m.ordersFilled.Add(1)
}

// SetFeedConnected sets the feed connection gauge.
func (m *Metrics) SetFeedConnected(connected bool) {
	if connected {
		m.feedConnected.Store(1)
	} else {
		m.feedConnected.Store(0)
	}
}

// RecordReconnect counts one feed reconnect attempt.
func (m *Metrics) RecordReconnect() {
	m.reconnects.Add(1)
}

// MetricsSnapshot is a point-in-time view of all metrics.
type MetricsSnapshot struct {
	BarsProcessed uint64
	OrdersEmitted uint64
	OrdersFilled  uint64
	ErrorsTotal   uint64
	AvgLatencyNs  int64
	FeedConnected bool
	Reconnects    uint64
	Timestamp     time.Time
}

// Snapshot returns current metrics as a snapshot.
func (m *Metrics) Snapshot() MetricsSnapshot {
	var avgLatency int64
	count := m.latencyCount.Load()
	if count > 0 {
		avgLatency = m.latencySumNs.Load() / int64(count)
	}

	return MetricsSnapshot{
		BarsProcessed: m.barsProcessed.Load(),
		OrdersEmitted: m.ordersEmitted.Load(),
		OrdersFilled:  m.ordersFilled.Load(),
		ErrorsTotal:   m.errorsTotal.Load(),
		AvgLatencyNs:  avgLatency,
		FeedConnected: m.feedConnected.Load() == 1,
		Reconnects:    m.reconnects.Load(),
		Timestamp:     time.Now(),
	}
}

// Reset clears all metrics (for testing).
func (m *Metrics) Reset() {
	m.barsProcessed.Store(0)
	m.ordersEmitted.Store(0)
	m.ordersFilled.Store(0)
	m.errorsTotal.Store(0)
	m.latencySumNs.Store(0)
	m.latencyCount.Store(0)
	m.feedConnected.Store(0)
	m.reconnects.Store(0)
}
