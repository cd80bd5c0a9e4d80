package infra

import (
	"sync"
	"testing"
)

func TestMetricsRecordBar(t *testing.T) {
	m := &Metrics{}
	m.RecordBar(1000)
	m.RecordBar(3000)

	snap := m.Snapshot()
	if snap.BarsProcessed != 2 {
		t.Errorf("BarsProcessed = %d, want 2", snap.BarsProcessed)
	}
	if snap.AvgLatencyNs != 2000 {
		t.Errorf("AvgLatencyNs = %d, want 2000", snap.AvgLatencyNs)
	}
}

func TestMetricsCounters(t *testing.T) {
	m := &Metrics{}
	m.RecordOrderEmitted()
	m.RecordOrderEmitted()
	m.RecordOrderFilled()
	m.RecordError()
	m.RecordReconnect()

	snap := m.Snapshot()
	if snap.OrdersEmitted != 2 {
		t.Errorf("OrdersEmitted = %d, want 2", snap.OrdersEmitted)
	}
	if snap.OrdersFilled != 1 {
		t.Errorf("OrdersFilled = %d, want 1", snap.OrdersFilled)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("ErrorsTotal = %d, want 1", snap.ErrorsTotal)
	}
	if snap.Reconnects != 1 {
		t.Errorf("Reconnects = %d, want 1", snap.Reconnects)
	}
}

func TestMetricsFeedGauge(t *testing.T) {
	m := &Metrics{}
	if m.Snapshot().FeedConnected {
		t.Error("feed should start disconnected")
	}
	m.SetFeedConnected(true)
	if !m.Snapshot().FeedConnected {
		t.Error("feed should be connected")
	}
	m.SetFeedConnected(false)
	if m.Snapshot().FeedConnected {
		t.Error("feed should be disconnected")
	}
}

func TestMetricsReset(t *testing.T) {
	m := &Metrics{}
	m.RecordBar(500)
	m.RecordError()
	m.Reset()

	snap := m.Snapshot()
	if snap.BarsProcessed != 0 || snap.ErrorsTotal != 0 || snap.AvgLatencyNs != 0 {
		t.Errorf("Reset did not clear metrics: %+v", snap)
	}
}

func TestMetricsConcurrent(t *testing.T) {
	m := &Metrics{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.RecordBar(100)
				m.RecordError()
			}
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.BarsProcessed != 1000 {
		t.Errorf("BarsProcessed = %d, want 1000", snap.BarsProcessed)
	}
	if snap.ErrorsTotal != 1000 {
		t.Errorf("ErrorsTotal = %d, want 1000", snap.ErrorsTotal)
	}
}
