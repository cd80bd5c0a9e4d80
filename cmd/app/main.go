package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"som_trader/internal/app"
	"som_trader/internal/domain"
	"som_trader/internal/engine"
	"som_trader/internal/execution"
	"som_trader/internal/infra"
	"som_trader/internal/infra/feed"
	"som_trader/internal/learner"
	"som_trader/internal/strategy"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Learner RNG: fixed seed for reproducible sessions, entropy otherwise
	seed := cfg.Learner.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	slog.Info("Learner RNG seeded", slog.Int64("seed", seed))

	// 5. Strategy
	strat, err := strategy.NewSOMQStrategy(cfg.Feed.Symbol, cfg.Trade.BaseSize, cfg.LearnerParams(), rng)
	if err != nil {
		slog.Error("❌ Strategy init failed", slog.Any("error", err))
		os.Exit(1)
	}
	strat.SetTelemetrySink(func(rec learner.StepRecord) {
		if err := bootstrap.Storage.SaveStep(&rec); err != nil {
			slog.Warn("Step record save failed", slog.Int("bar", rec.Bar), slog.Any("error", err))
		}
	})

	// 6. Paper Execution
	exec := execution.NewPaperExecution(cfg.Trade.FeeRate)
	exec.Deposit(cfg.Trade.InitialCash)

	// 7. Sequencer: paper books see the new price before the strategy acts on it
	seq := engine.NewSequencer(1024, bootstrap.Storage, strat, exec, func(state *domain.MarketState) {
		exec.UpdatePrice(state.Symbol, decimal.NewFromFloat(state.Price))
	})

	// 8. Background metrics reporter
	go bootstrap.ReportMetrics(ctx, 30*time.Second)

	switch cfg.Feed.Source {
	case infra.FeedSourceReplay:
		runReplay(ctx, bootstrap, seq, exec, strat)
	default:
		runLive(ctx, cfg, seq, exec)
	}
}

// runLive connects the WebSocket feed and blocks until shutdown.
func runLive(ctx context.Context, cfg *infra.Config, seq *engine.Sequencer, exec *execution.PaperExecution) {
	go seq.Run(ctx)
	slog.InfoContext(ctx, "✅ Sequencer (Hotpath) started")

	nextSeq := uint64(0)
	worker := feed.NewWorker(cfg.Feed.WSURL, cfg.Feed.Token, cfg.Feed.Symbol, seq.Inbox(), &nextSeq)
	if err := worker.Connect(ctx); err != nil {
		slog.Error("Failed to start feed worker", slog.Any("error", err))
		os.Exit(1)
	}
	defer worker.Disconnect()
	slog.InfoContext(ctx, "✅ Feed worker started", slog.String("symbol", cfg.Feed.Symbol))

	slog.InfoContext(ctx, "✨ SOM Trader fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
	slog.Info("Final equity", slog.String("equity", exec.Equity().String()))
}

// runReplay pushes the stored bar log through the engine synchronously.
func runReplay(ctx context.Context, bootstrap *app.Bootstrap, seq *engine.Sequencer, exec *execution.PaperExecution, strat *strategy.SOMQStrategy) {
	replayer := feed.NewReplayer(bootstrap.Storage, seq, bootstrap.Config.Feed.Symbol)
	n, err := replayer.Run(ctx)
	if err != nil {
		slog.Error("❌ Replay failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Persist fills produced during the replay session
	for _, fill := range exec.Fills() {
		if err := bootstrap.Storage.SaveFill(&fill); err != nil {
			slog.Warn("Fill save failed", slog.String("order_id", fill.OrderID), slog.Any("error", err))
		}
	}

	counters := strat.Counters()
	slog.Info("🏁 Replay session complete",
		slog.Int("bars", n),
		slog.Int("fills", len(exec.Fills())),
		slog.String("cash", exec.Cash().String()),
		slog.String("equity", exec.Equity().String()),
		slog.Uint64("map_updates", counters.MapUpdates),
		slog.Uint64("explore_draws", counters.ExploreDraws),
		slog.Uint64("greedy_draws", counters.GreedyDraws),
		slog.Uint64("degeneracies", counters.Degeneracies),
		slog.Uint64("missing_samples", counters.MissingSamples),
	)
}
