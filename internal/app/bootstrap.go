package app

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/infra"
	"github.com/alpacahq/example-hftish/internal/storage"
)

// Bootstrap holds everything the commands need before the engine starts.
type Bootstrap struct {
	Config  *infra.Config
	Logger  *slog.Logger
	Journal *storage.Journal
}

// Init loads environment, configuration, and logging, warms the event pools,
// and opens the diagnostics journal.
func Init(configPath string) (*Bootstrap, error) {
	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	event.Warmup()

	var journal *storage.Journal
	if cfg.Journal.Path != "" {
		journal, err = storage.OpenJournal(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		logger.Info("Journal opened", slog.String("path", cfg.Journal.Path))
	}

	if cfg.Metrics.Addr != "" {
		infra.StartMetricsServer(cfg.Metrics.Addr)
	}

	logger.Info("Bootstrap complete",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("mode", cfg.Trading.Mode),
		slog.Any("symbols", cfg.Trading.Symbols),
		slog.Int64("max_shares", cfg.Trading.MaxShares),
	)

	return &Bootstrap{Config: cfg, Logger: logger, Journal: journal}, nil
}

// Close releases bootstrap-owned resources.
func (b *Bootstrap) Close() {
	if b.Journal != nil {
		if err := b.Journal.Close(); err != nil {
			slog.Warn("Journal close failed", slog.Any("error", err))
		}
	}
}
