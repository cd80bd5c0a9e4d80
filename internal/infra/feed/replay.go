package feed

import (
	"context"
	"fmt"
	"log/slog"

	"som_trader/internal/domain"
	"som_trader/internal/event"
)

// BarLoader provides stored bars for replay.
type BarLoader interface {
	LoadBars(symbol string) ([]domain.BarRecord, error)
}

// ReplaySink consumes replayed events synchronously.
type ReplaySink interface {
	ReplayEvent(ev event.Event)
}

// Replayer pushes previously recorded bars through the engine in order.
// Events are replayed synchronously so a backtest is deterministic.
type Replayer struct {
	loader BarLoader
	sink   ReplaySink
	symbol string
}

// NewReplayer creates a replayer over the stored bar log.
func NewReplayer(loader BarLoader, sink ReplaySink, symbol string) *Replayer {
	return &Replayer{loader: loader, sink: sink, symbol: symbol}
}

// Run replays every stored bar for the symbol. It returns the number of
// bars replayed.
func (r *Replayer) Run(ctx context.Context) (int, error) {
	bars, err := r.loader.LoadBars(r.symbol)
	if err != nil {
		return 0, fmt.Errorf("load bars: %w", err)
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no stored bars for %s", r.symbol)
	}

	slog.Info("Replay started", slog.String("symbol", r.symbol), slog.Int("bars", len(bars)))

	count := 0
	for i := range bars {
		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		rec := &bars[i]
		ev := &event.BarEvent{
			BaseEvent: event.BaseEvent{Seq: rec.Seq, Ts: rec.Ts},
			Symbol:    rec.Symbol,
			Price:     rec.Price,
			Volume:    rec.Volume,
		}
		r.sink.ReplayEvent(ev)
		count++
	}

	slog.Info("Replay finished", slog.Int("bars", count))
	return count, nil
}
