package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"som_trader/internal/domain"
	"som_trader/internal/event"
	"som_trader/internal/infra"
	"som_trader/internal/strategy"
)

// EventStore persists inbound events before they mutate state (WAL-first).
type EventStore interface {
	SaveBar(ctx context.Context, ev *event.BarEvent) error
}

// Sequencer is the core single-threaded event processor. Every bar's
// pipeline completes fully, mutations included, before the next bar is
// touched; the learner state it drives is never shared with another
// goroutine.
type Sequencer struct {
	inbox   chan event.Event
	markets map[string]*domain.MarketState
	nextSeq uint64
	store   EventStore

	strategy strategy.Strategy
	exec     domain.Execution
	orderSeq uint64

	// Boundary: used to notify the host of state changes
	onStateUpdate func(*domain.MarketState)

	mu sync.RWMutex // Used only for external reads
}

// NewSequencer creates a new sequencer instance.
func NewSequencer(inboxSize int, store EventStore, strat strategy.Strategy, exec domain.Execution, onUpdate func(*domain.MarketState)) *Sequencer {
	return &Sequencer{
		inbox:         make(chan event.Event, inboxSize),
		markets:       make(map[string]*domain.MarketState),
		nextSeq:       1,
		store:         store,
		strategy:      strat,
		exec:          exec,
		onStateUpdate: onUpdate,
	}
}

// Inbox returns the event channel. External workers send events here.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started (Single-Thread Hotpath)")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			// Halt after dump: better a dead session than a corrupt one.
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case ev := <-s.inbox:
			s.processEvent(ev)
		}
	}
}

func (s *Sequencer) processEvent(ev event.Event) {
	start := time.Now()

	// 1. Sequence Gap Check (Halt Policy)
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("SEQUENCE_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	// 2. WAL-first: Persistence
	if s.store != nil {
		if bar, ok := ev.(*event.BarEvent); ok {
			if err := s.store.SaveBar(context.Background(), bar); err != nil {
				panic(fmt.Sprintf("PERSISTENCE_FAILURE: %v", err))
			}
		}
	}

	// 3. Logic Dispatch
	switch e := ev.(type) {
	case *event.BarEvent:
		s.handleBar(e)
		event.ReleaseBarEvent(e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}

	// 4. Increment Sequence
	s.nextSeq++

	infra.GlobalMetrics.RecordBar(time.Since(start).Nanoseconds())
}

// ReplayEvent processes an event synchronously without WAL logging.
// This is used exclusively by the Replayer.
func (s *Sequencer) ReplayEvent(ev event.Event) {
	// Replay must still respect sequence order
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("REPLAY_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	switch e := ev.(type) {
	case *event.BarEvent:
		s.handleBar(e)
	default:
		slog.Warn("Unknown event type in replay", slog.Any("type", ev.GetType()))
	}

	s.nextSeq++
}

func (s *Sequencer) handleBar(e *event.BarEvent) {
	state, ok := s.markets[e.Symbol]
	if !ok {
		state = &domain.MarketState{Symbol: e.Symbol}
		s.markets[e.Symbol] = state
	}

	// Update state (No Mutex needed here as we are in the Hotpath)
	state.Price = e.Price
	state.Volume = e.Volume
	state.LastUpdate = e.Ts
	state.Bars++

	// Notify before the strategy runs so execution fills at this bar's price.
	if s.onStateUpdate != nil {
		s.onStateUpdate(state)
	}

	if s.strategy == nil {
		return
	}
	bar := domain.Bar{Symbol: e.Symbol, Price: e.Price, Volume: e.Volume, Ts: e.Ts}
	for _, action := range s.strategy.OnBar(bar) {
		s.executeAction(action, e.Ts)
	}
}

func (s *Sequencer) executeAction(action strategy.Action, ts int64) {
	slog.Info("STRATEGY_ACTION",
		slog.String("type", action.Type.String()),
		slog.String("symbol", action.Symbol),
		slog.String("qty", action.Qty.String()))
	infra.GlobalMetrics.RecordOrderEmitted()

	if s.exec == nil {
		return
	}

	s.orderSeq++
	side := domain.SideBuy
	if action.Type == strategy.ActionSell {
		side = domain.SideSell
	}
	order := domain.Order{
		ID:           fmt.Sprintf("ord-%d", s.orderSeq),
		Symbol:       action.Symbol,
		Side:         side,
		Type:         domain.OrderTypeMarket,
		Price:        decimal.Zero,
		Qty:          action.Qty,
		Status:       domain.OrderStatusNew,
		CreatedUnixM: ts,
	}
	if err := s.exec.ExecuteOrder(context.Background(), order); err != nil {
		slog.Error("Order execution failed", slog.String("id", order.ID), slog.Any("error", err))
		infra.GlobalMetrics.RecordError()
		return
	}
	infra.GlobalMetrics.RecordOrderFilled()
}

// GetMarketState returns a snapshot of the market state (external read).
func (s *Sequencer) GetMarketState(symbol string) (domain.MarketState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.markets[symbol]
	if !ok {
		return domain.MarketState{}, false
	}
	return *state, true // Return copy
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		NextSeq uint64                         `json:"next_seq"`
		Markets map[string]*domain.MarketState `json:"markets"`
	}{
		NextSeq: s.nextSeq,
		Markets: s.markets,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	if err := os.WriteFile(filename, b, 0644); err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}
