package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alpacahq/example-hftish/internal/app"
	"github.com/alpacahq/example-hftish/internal/engine"
	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/execution"
	"github.com/alpacahq/example-hftish/internal/infra/alpaca"
	"github.com/alpacahq/example-hftish/internal/strategy"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	flag.Parse()

	bootstrap, err := app.Init(*configPath)
	if err != nil {
		slog.Error("Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Close()
	cfg := bootstrap.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inbox := make(chan event.Event, 1024)
	nextSeq := uint64(1)

	gateway, err := execution.NewGateway(cfg, inbox, &nextSeq)
	if err != nil {
		slog.Error("Gateway setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	eng := engine.NewEngine(inbox, strategy.NewTickFollow(cfg.Trading.MaxShares), gateway, bootstrap.Journal)
	go eng.Run(ctx)

	marketWorker := alpaca.NewMarketWorker(cfg, inbox, &nextSeq)
	if err := marketWorker.Connect(ctx); err != nil {
		slog.Error("Failed to connect market data stream", slog.Any("error", err))
		os.Exit(1)
	}
	defer marketWorker.Disconnect()
	slog.Info("Market data worker started", slog.Any("symbols", cfg.Trading.Symbols))

	// In LIVE mode the venue reports order lifecycle over the account stream.
	// PAPER mode gets updates from the simulated venue instead.
	if cfg.Trading.Mode == "LIVE" {
		tradeWorker := alpaca.NewTradeUpdateWorker(cfg, inbox, &nextSeq)
		if err := tradeWorker.Connect(ctx); err != nil {
			slog.Error("Failed to connect trade update stream", slog.Any("error", err))
			os.Exit(1)
		}
		defer tradeWorker.Disconnect()
		slog.Info("Trade update worker started")
	}

	slog.Info("Tick taker operational. Press Ctrl+C to exit.")

	<-ctx.Done()

	snap := eng.Snapshot()
	slog.Info("Shutting down gracefully",
		slog.Int64("total_shares", snap.TotalShares),
		slog.Int64("pending_buy", snap.PendingBuy),
		slog.Int64("pending_sell", snap.PendingSell),
		slog.Int("live_orders", eng.LiveOrders()))
}
