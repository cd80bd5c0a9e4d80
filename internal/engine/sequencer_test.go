package engine

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"som_trader/internal/domain"
	"som_trader/internal/event"
	"som_trader/internal/strategy"
)

func TestSequencer_MarketUpdate(t *testing.T) {
	seq := NewSequencer(10, nil, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go seq.Run(ctx)

	// Send an event
	ev := event.AcquireBarEvent()
	ev.Seq = 1
	ev.Ts = 1000
	ev.Symbol = "BTCUSD"
	ev.Price = 42000.5
	ev.Volume = 3.0
	seq.Inbox() <- ev

	// Wait for processing
	time.Sleep(100 * time.Millisecond)

	state, ok := seq.GetMarketState("BTCUSD")
	if !ok {
		t.Fatal("Market state should exist")
	}
	if state.Price != 42000.5 {
		t.Errorf("Expected price 42000.5, got %v", state.Price)
	}
	if state.Bars != 1 {
		t.Errorf("Expected 1 bar, got %d", state.Bars)
	}
}

func TestSequencer_GapDetection(t *testing.T) {
	seq := NewSequencer(10, nil, nil, nil, nil)

	// Should panic when receiving out-of-order event
	defer func() {
		if r := recover(); r == nil {
			t.Error("Sequencer should have panicked on sequence gap")
		}
	}()

	ev := &event.BarEvent{
		BaseEvent: event.BaseEvent{Seq: 2, Ts: 1000}, // Start with 2 instead of 1
		Symbol:    "BTCUSD",
	}
	seq.processEvent(ev)
}

func TestSequencer_ReplayGapDetection(t *testing.T) {
	seq := NewSequencer(10, nil, nil, nil, nil)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Replay should have panicked on sequence gap")
		}
	}()

	seq.ReplayEvent(&event.BarEvent{
		BaseEvent: event.BaseEvent{Seq: 5, Ts: 1000},
		Symbol:    "BTCUSD",
	})
}

func TestSequencer_StateUpdateBeforeStrategy(t *testing.T) {
	var seen []float64
	strat := &priceCaptureStrategy{}

	seq := NewSequencer(10, nil, strat, nil, func(state *domain.MarketState) {
		seen = append(seen, state.Price)
	})

	for i := 1; i <= 3; i++ {
		seq.ReplayEvent(&event.BarEvent{
			BaseEvent: event.BaseEvent{Seq: uint64(i), Ts: int64(i) * 1000},
			Symbol:    "BTCUSD",
			Price:     100.0 + float64(i),
		})
	}

	if len(seen) != 3 {
		t.Fatalf("expected 3 state updates, got %d", len(seen))
	}
	if len(strat.prices) != 3 {
		t.Fatalf("expected 3 strategy calls, got %d", len(strat.prices))
	}
	// The host sees each price no later than the strategy does
	for i := range seen {
		if seen[i] != strat.prices[i] {
			t.Errorf("bar %d: host saw %v, strategy saw %v", i, seen[i], strat.prices[i])
		}
	}
}

func TestSequencer_ActionsReachExecution(t *testing.T) {
	strat := &fixedActionStrategy{symbol: "BTCUSD"}
	exec := &captureExecution{}

	seq := NewSequencer(10, nil, strat, exec, nil)
	seq.ReplayEvent(&event.BarEvent{
		BaseEvent: event.BaseEvent{Seq: 1, Ts: 1000},
		Symbol:    "BTCUSD",
		Price:     100.0,
	})

	if len(exec.orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(exec.orders))
	}
	ord := exec.orders[0]
	if ord.Side != domain.SideBuy {
		t.Errorf("side = %q, want BUY", ord.Side)
	}
	if ord.Type != domain.OrderTypeMarket {
		t.Errorf("type = %q, want MARKET", ord.Type)
	}
	if !ord.Qty.Equal(decimal.NewFromFloat(0.5)) {
		t.Errorf("qty = %s, want 0.5", ord.Qty)
	}
	if ord.ID != "ord-1" {
		t.Errorf("id = %q, want ord-1", ord.ID)
	}
}

// priceCaptureStrategy records the market price visible on each bar.
type priceCaptureStrategy struct {
	prices []float64
}

func (s *priceCaptureStrategy) OnBar(bar domain.Bar) []strategy.Action {
	s.prices = append(s.prices, bar.Price)
	return nil
}

// fixedActionStrategy emits one buy per bar.
type fixedActionStrategy struct {
	symbol string
}

func (s *fixedActionStrategy) OnBar(bar domain.Bar) []strategy.Action {
	return []strategy.Action{{
		Type:   strategy.ActionBuy,
		Symbol: s.symbol,
		Qty:    decimal.NewFromFloat(0.5),
	}}
}

// captureExecution records submitted orders.
type captureExecution struct {
	orders []domain.Order
}

func (e *captureExecution) ExecuteOrder(_ context.Context, order domain.Order) error {
	e.orders = append(e.orders, order)
	return nil
}
