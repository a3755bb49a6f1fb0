package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/alpacahq/example-hftish/internal/domain"
	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/execution"
	"github.com/alpacahq/example-hftish/internal/infra"
	"github.com/alpacahq/example-hftish/internal/storage"
	"github.com/alpacahq/example-hftish/internal/strategy"
	"github.com/alpacahq/example-hftish/pkg/quant"
)

const gatewayTimeout = 5 * time.Second

// Engine is the single-threaded core: it drains the inbox and applies each
// event to the quote book, the position ledger, and the strategy in arrival
// order. All state mutation happens on the Run goroutine; the mutex exists
// only so external observers can snapshot between events.
type Engine struct {
	inbox    <-chan event.Event
	quotes   *domain.QuoteBook
	position *domain.PositionBook
	strat    strategy.Strategy
	gateway  execution.Gateway
	journal  *storage.Journal
	breaker  *infra.CircuitBreaker

	mu sync.RWMutex
}

// NewEngine wires the core loop. journal may be nil to disable journaling.
func NewEngine(inbox <-chan event.Event, strat strategy.Strategy, gateway execution.Gateway, journal *storage.Journal) *Engine {
	return &Engine{
		inbox:    inbox,
		quotes:   domain.NewQuoteBook(),
		position: domain.NewPositionBook(),
		strat:    strat,
		gateway:  gateway,
		journal:  journal,
		breaker:  infra.NewCircuitBreaker("order-gateway", 5, 2, 30*time.Second),
	}
}

// Run drains the inbox until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	slog.Info("Engine started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Engine stopped", slog.Int("live_orders", e.LiveOrders()))
			return
		case ev := <-e.inbox:
			e.processEvent(ctx, ev)
		}
	}
}

func (e *Engine) processEvent(ctx context.Context, ev event.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch ev := ev.(type) {
	case *event.QuoteEvent:
		e.handleQuote(ev)
		event.ReleaseQuoteEvent(ev)
	case *event.TradeEvent:
		e.handleTrade(ctx, ev)
		event.ReleaseTradeEvent(ev)
	case *event.OrderUpdateEvent:
		e.handleOrderUpdate(ev)
	default:
		slog.Warn("Engine: unhandled event", slog.Any("type", ev.GetType()))
	}
}

func (e *Engine) handleQuote(ev *event.QuoteEvent) {
	lc, ok := e.quotes.Update(ev.Symbol, ev.BidPriceMicros, ev.AskPriceMicros, ev.BidSize, ev.AskSize, ev.Ts)
	if !ok {
		return
	}

	infra.CountLevelChange(ev.Symbol)
	e.journal.RecordLevelChange(lc)

	slog.Debug("Level change",
		slog.String("symbol", lc.Symbol),
		slog.String("bid", lc.Bid.String()),
		slog.String("ask", lc.Ask.String()),
	)
}

func (e *Engine) handleTrade(ctx context.Context, ev *event.TradeEvent) {
	st := e.quotes.Lookup(ev.Symbol)

	trade := domain.Trade{
		Symbol:      ev.Symbol,
		PriceMicros: ev.PriceMicros,
		Size:        ev.Size,
		At:          ev.Ts,
	}

	order, ok := e.strat.OnTrade(st, e.position.Snapshot(), trade)
	if !ok {
		return
	}

	e.submitAndCancel(ctx, st, order, ev.Ts)
}

// submitAndCancel fires a one-lot limit order at the quoted price and cancels
// it right away: only the slice that executes before the cancel lands is
// kept. Eligibility is consumed only on a successful submit, so a failed
// attempt can retry on the next qualifying trade.
func (e *Engine) submitAndCancel(ctx context.Context, st *domain.QuoteState, order domain.Order, ts quant.TimeStamp) {
	if !e.breaker.Allow() {
		slog.Warn("Order suppressed, gateway circuit open",
			slog.String("symbol", order.Symbol), slog.String("side", string(order.Side)))
		return
	}

	submitCtx, cancel := context.WithTimeout(ctx, gatewayTimeout)
	id, err := e.gateway.SubmitOrder(submitCtx, order)
	cancel()
	if err != nil {
		e.breaker.RecordFailure()
		infra.CountGatewayError("submit")
		e.journal.RecordOrderAttempt(ts, order, "submit_failed")
		slog.Error("Order submit failed",
			slog.String("symbol", order.Symbol),
			slog.String("side", string(order.Side)),
			slog.Any("error", err))
		return
	}
	e.breaker.RecordSuccess()

	order.ID = id
	order.SubmittedUnixM = ts
	e.position.Register(id, order.Side)
	st.Eligible = false

	infra.CountOrder(order.Symbol, string(order.Side))
	e.journal.RecordOrderAttempt(ts, order, "submitted")

	slog.Info("Order submitted",
		slog.String("id", id),
		slog.String("symbol", order.Symbol),
		slog.String("side", string(order.Side)),
		slog.String("limit", order.LimitPriceMicros.String()),
		slog.Int64("qty", order.Qty))

	cancelCtx, cancelFn := context.WithTimeout(ctx, gatewayTimeout)
	err = e.gateway.CancelOrder(cancelCtx, id)
	cancelFn()
	if err != nil {
		// The order may already be terminal at the venue; the trade update
		// stream settles the ledger either way.
		infra.CountGatewayError("cancel")
		slog.Warn("Order cancel failed", slog.String("id", id), slog.Any("error", err))
	}
}

func (e *Engine) handleOrderUpdate(ev *event.OrderUpdateEvent) {
	kind := domain.UpdateKind(ev.Kind)
	side := domain.Side(ev.Side)

	if err := e.position.Apply(ev.OrderID, kind, side, ev.FilledQty); err != nil {
		infra.CountLedgerInconsistency()
		if errors.Is(err, domain.ErrUnknownOrder) {
			slog.Error("Order update for unknown order", slog.String("id", ev.OrderID), slog.String("kind", ev.Kind))
		} else {
			slog.Error("Ledger inconsistency", slog.Any("error", err))
		}
		return
	}

	snap := e.position.Snapshot()
	infra.SetTotalShares(snap.TotalShares)

	slog.Info("Order update",
		slog.String("id", ev.OrderID),
		slog.String("kind", ev.Kind),
		slog.Int64("filled", ev.FilledQty),
		slog.Int64("total_shares", snap.TotalShares),
		slog.Int64("pending_buy", snap.PendingBuy),
		slog.Int64("pending_sell", snap.PendingSell))
}

// Snapshot returns the current ledger counters.
func (e *Engine) Snapshot() domain.PositionSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position.Snapshot()
}

// LiveOrders returns the number of orders awaiting a terminal update.
func (e *Engine) LiveOrders() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.position.LiveOrders()
}
