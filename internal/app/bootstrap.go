package app

import (
	"context"
	"log/slog"
	"time"

	"som_trader/internal/event"
	"som_trader/internal/infra"
	"som_trader/internal/infra/storage"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (Config, Logger, DB)
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping SOM Trader...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage(cfg.Storage.Path)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized", slog.String("path", cfg.Storage.Path))

	// 4. Pre-warm the event pool before the hotpath starts
	event.Warmup()

	return nil
}

// ReportMetrics logs a metrics snapshot periodically until ctx is done.
// Runs in the background alongside the hotpath.
func (b *Bootstrap) ReportMetrics(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := infra.GlobalMetrics.Snapshot()
			slog.Info("METRICS",
				slog.Uint64("bars", snap.BarsProcessed),
				slog.Uint64("orders_emitted", snap.OrdersEmitted),
				slog.Uint64("orders_filled", snap.OrdersFilled),
				slog.Uint64("errors", snap.ErrorsTotal),
				slog.Int64("avg_latency_ns", snap.AvgLatencyNs),
				slog.Bool("feed_connected", snap.FeedConnected),
				slog.Uint64("reconnects", snap.Reconnects),
			)
		}
	}
}

// Close releases bootstrap-owned resources.
func (b *Bootstrap) Close() {
	if b.Storage != nil {
		if err := b.Storage.Close(); err != nil {
			slog.Warn("Storage close failed", slog.Any("error", err))
		}
	}
}
