package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"som_trader/internal/domain"
	"som_trader/internal/event"
	"som_trader/internal/learner"
)

func setupTestDB(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestSaveAndLoadBars(t *testing.T) {
	s := setupTestDB(t)

	for i := uint64(1); i <= 3; i++ {
		ev := &event.BarEvent{
			BaseEvent: event.BaseEvent{Seq: i, Ts: int64(i) * 1000},
			Symbol:    "BTCUSD",
			Price:     100.0 + float64(i),
			Volume:    10.0,
		}
		if err := s.SaveBar(context.Background(), ev); err != nil {
			t.Fatalf("SaveBar failed: %v", err)
		}
	}

	bars, err := s.LoadBars("BTCUSD")
	if err != nil {
		t.Fatalf("LoadBars failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	for i, b := range bars {
		if b.Seq != uint64(i+1) {
			t.Errorf("bar %d out of order: seq %d", i, b.Seq)
		}
	}
	if bars[2].Price != 103.0 {
		t.Errorf("expected price 103.0, got %v", bars[2].Price)
	}

	// Other symbols stay invisible
	other, err := s.LoadBars("ETHUSD")
	if err != nil {
		t.Fatalf("LoadBars failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("expected no bars for ETHUSD, got %d", len(other))
	}
}

func TestSaveBarDuplicateSeq(t *testing.T) {
	s := setupTestDB(t)

	ev := &event.BarEvent{
		BaseEvent: event.BaseEvent{Seq: 7, Ts: 1000},
		Symbol:    "BTCUSD",
		Price:     100.0,
	}
	if err := s.SaveBar(context.Background(), ev); err != nil {
		t.Fatalf("SaveBar failed: %v", err)
	}
	if err := s.SaveBar(context.Background(), ev); err == nil {
		t.Error("expected error on duplicate sequence number")
	}
}

func TestSaveAndLoadSteps(t *testing.T) {
	s := setupTestDB(t)

	rec := &learner.StepRecord{
		Bar:         42,
		Phase:       learner.PhaseLearnOnly,
		Decay:       0.95,
		NodeIndex:   3,
		Distance:    0.12,
		ActionIndex: 1,
		QValue:      0.5,
		Reward:      -0.02,
	}
	if err := s.SaveStep(rec); err != nil {
		t.Fatalf("SaveStep failed: %v", err)
	}

	steps, err := s.LoadSteps()
	if err != nil {
		t.Fatalf("LoadSteps failed: %v", err)
	}
	if len(steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(steps))
	}
	got := steps[0]
	if got.Bar != 42 || got.NodeIndex != 3 || got.ActionIndex != 1 {
		t.Errorf("step fields mismatch: %+v", got)
	}
	if got.Phase != learner.PhaseLearnOnly.String() {
		t.Errorf("phase = %q, want %q", got.Phase, learner.PhaseLearnOnly.String())
	}
}

func TestSaveFill(t *testing.T) {
	s := setupTestDB(t)

	fill := &domain.Fill{
		OrderID: "ord-1",
		Symbol:  "BTCUSD",
		Side:    domain.SideBuy,
		Price:   decimal.NewFromFloat(50000.5),
		Qty:     decimal.NewFromFloat(0.01),
		Fee:     decimal.NewFromFloat(0.5),
		Ts:      1234,
	}
	if err := s.SaveFill(fill); err != nil {
		t.Fatalf("SaveFill failed: %v", err)
	}

	var rows []domain.FillRecord
	if err := s.db.Find(&rows).Error; err != nil {
		t.Fatalf("query fills: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 fill, got %d", len(rows))
	}
	if rows[0].Price != "50000.5" {
		t.Errorf("price stored as %q, want 50000.5", rows[0].Price)
	}
	if rows[0].Side != domain.SideBuy {
		t.Errorf("side = %q, want BUY", rows[0].Side)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	s := setupTestDB(t)

	if err := s.SaveConfig("theme", "dark"); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	if err := s.SaveConfig("theme", "light"); err != nil {
		t.Fatalf("SaveConfig update failed: %v", err)
	}

	m, err := s.LoadConfigMap()
	if err != nil {
		t.Fatalf("LoadConfigMap failed: %v", err)
	}
	if m["theme"] != "light" {
		t.Errorf("theme = %q, want light", m["theme"])
	}
}
