package execution

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/alpacahq/example-hftish/internal/domain"
	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// FillMode controls how the simulated venue resolves submitted orders.
type FillMode string

const (
	// FillModeFill fully fills every order.
	FillModeFill FillMode = "fill"
	// FillModePartial reports a partial fill first, then the full fill, to
	// exercise the cumulative-quantity ledger path.
	FillModePartial FillMode = "partial"
	// FillModeNone leaves orders working until they are cancelled.
	FillModeNone FillMode = "none"
)

type simOrder struct {
	order    domain.Order
	filled   int64
	terminal bool
}

// SimGateway is a simulated venue for paper trading without credentials.
// Submitted orders resolve asynchronously: resulting order updates are
// emitted into the same inbox the live trade-update stream would feed, so
// the engine's accounting path is identical in both modes.
type SimGateway struct {
	inbox   chan<- event.Event
	seq     *uint64
	mode    FillMode
	latency time.Duration

	mu     sync.Mutex
	orders map[string]*simOrder
}

// NewSimGateway creates a simulated venue emitting order updates into inbox.
func NewSimGateway(inbox chan<- event.Event, seq *uint64, mode FillMode, latency time.Duration) *SimGateway {
	return &SimGateway{
		inbox:   inbox,
		seq:     seq,
		mode:    mode,
		latency: latency,
		orders:  make(map[string]*simOrder),
	}
}

// SubmitOrder accepts the order and schedules its resolution.
func (g *SimGateway) SubmitOrder(ctx context.Context, order domain.Order) (string, error) {
	id := xid.New().String()
	order.ID = id

	g.mu.Lock()
	g.orders[id] = &simOrder{order: order}
	g.mu.Unlock()

	slog.Info("SIM GATEWAY: Submit Order",
		slog.String("id", id),
		slog.String("symbol", order.Symbol),
		slog.String("side", string(order.Side)),
		slog.String("limit", order.LimitPriceMicros.String()),
	)

	if g.mode != FillModeNone {
		go g.resolve(id)
	}
	return id, nil
}

// CancelOrder cancels a working order. Orders the venue already resolved
// report a transport-style error, mirroring a real venue rejecting cancels
// on terminal orders.
func (g *SimGateway) CancelOrder(ctx context.Context, orderID string) error {
	g.mu.Lock()
	o, ok := g.orders[orderID]
	if !ok {
		g.mu.Unlock()
		return fmt.Errorf("sim: order not found: %s", orderID)
	}
	if o.terminal {
		g.mu.Unlock()
		return fmt.Errorf("sim: order already terminal: %s", orderID)
	}
	o.terminal = true
	filled := o.filled
	side := o.order.Side
	g.mu.Unlock()

	slog.Info("SIM GATEWAY: Cancel Order", slog.String("id", orderID))
	g.emit(orderID, domain.UpdateCanceled, side, filled)
	return nil
}

func (g *SimGateway) resolve(orderID string) {
	if g.latency > 0 {
		time.Sleep(g.latency)
	}

	g.mu.Lock()
	o, ok := g.orders[orderID]
	if !ok || o.terminal {
		g.mu.Unlock()
		return
	}

	if g.mode == FillModePartial {
		o.filled = 40
		g.mu.Unlock()
		g.emit(orderID, domain.UpdatePartialFill, o.order.Side, 40)
		g.mu.Lock()
		if o.terminal {
			g.mu.Unlock()
			return
		}
	}

	o.filled = o.order.Qty
	o.terminal = true
	g.mu.Unlock()

	g.emit(orderID, domain.UpdateFill, o.order.Side, o.order.Qty)
}

func (g *SimGateway) emit(orderID string, kind domain.UpdateKind, side domain.Side, filledQty int64) {
	ev := &event.OrderUpdateEvent{
		BaseEvent: event.BaseEvent{
			Seq: quant.NextSeq(g.seq),
			Ts:  quant.TimeStamp(time.Now().UnixMicro()),
		},
		OrderID:   orderID,
		Kind:      string(kind),
		Side:      string(side),
		FilledQty: filledQty,
	}

	select {
	case g.inbox <- ev:
	default:
		slog.Warn("SIM GATEWAY: inbox full, dropping order update",
			slog.String("id", orderID), slog.String("kind", string(kind)))
	}
}
