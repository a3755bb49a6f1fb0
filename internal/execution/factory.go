package execution

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/infra"
	"github.com/alpacahq/example-hftish/internal/infra/alpaca"
)

// NewGateway builds the order gateway for the configured trading mode.
//
//   - MOCK:  log-only, nothing resolves.
//   - PAPER: simulated venue emitting order updates into inbox.
//   - LIVE:  Alpaca REST client. Order updates arrive via the account
//     stream worker, not through the gateway.
func NewGateway(cfg *infra.Config, inbox chan<- event.Event, seq *uint64) (Gateway, error) {
	switch cfg.Trading.Mode {
	case "MOCK":
		slog.Info("Execution mode: MOCK (log only)")
		return NewMockGateway(), nil

	case "PAPER":
		slog.Info("Execution mode: PAPER (simulated venue)",
			slog.String("sim_fill", cfg.Trading.SimFill))
		return NewSimGateway(inbox, seq, FillMode(cfg.Trading.SimFill), 5*time.Millisecond), nil

	case "LIVE":
		if !cfg.IsPaperEndpoint() && os.Getenv("CONFIRM_REAL_MONEY") != "YES" {
			return nil, fmt.Errorf("LIVE mode against %s requires CONFIRM_REAL_MONEY=YES", cfg.API.Alpaca.BaseURL)
		}
		slog.Warn("Execution mode: LIVE",
			slog.String("endpoint", cfg.API.Alpaca.BaseURL),
			slog.Bool("paper_endpoint", cfg.IsPaperEndpoint()))
		return alpaca.NewClient(cfg), nil

	default:
		return nil, fmt.Errorf("unknown trading mode: %s", cfg.Trading.Mode)
	}
}
