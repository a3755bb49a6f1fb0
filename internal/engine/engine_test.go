package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/alpacahq/example-hftish/internal/domain"
	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/strategy"
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// fakeGateway records submits and cancels so tests can assert the engine's
// order flow without a venue.
type fakeGateway struct {
	nextID    int
	submitted []domain.Order
	cancelled []string
	submitErr error
	cancelErr error
}

func (g *fakeGateway) SubmitOrder(ctx context.Context, order domain.Order) (string, error) {
	if g.submitErr != nil {
		return "", g.submitErr
	}
	g.nextID++
	id := fmt.Sprintf("ord-%d", g.nextID)
	order.ID = id
	g.submitted = append(g.submitted, order)
	return id, nil
}

func (g *fakeGateway) CancelOrder(ctx context.Context, orderID string) error {
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, orderID)
	return nil
}

func newTestEngine(gw *fakeGateway, maxShares int64) *Engine {
	return NewEngine(nil, strategy.NewTickFollow(maxShares), gw, nil)
}

func quoteEvent(ts quant.TimeStamp, bid, ask quant.PriceMicros, bidSize, askSize int64) *event.QuoteEvent {
	ev := event.AcquireQuoteEvent()
	ev.Ts = ts
	ev.Symbol = "SNAP"
	ev.BidPriceMicros = bid
	ev.AskPriceMicros = ask
	ev.BidSize = bidSize
	ev.AskSize = askSize
	return ev
}

func tradeEvent(ts quant.TimeStamp, price quant.PriceMicros, size int64) *event.TradeEvent {
	ev := event.AcquireTradeEvent()
	ev.Ts = ts
	ev.Symbol = "SNAP"
	ev.PriceMicros = price
	ev.Size = size
	return ev
}

func orderUpdate(id string, kind domain.UpdateKind, side domain.Side, filled int64) *event.OrderUpdateEvent {
	return &event.OrderUpdateEvent{
		OrderID:   id,
		Kind:      string(kind),
		Side:      string(side),
		FilledQty: filled,
	}
}

const (
	p1000 = quant.PriceMicros(10_000_000) // 10.00
	p1001 = quant.PriceMicros(10_010_000) // 10.01
	p1002 = quant.PriceMicros(10_020_000) // 10.02
)

func TestEngine_BuyRoundTrip(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(gw, 500)
	ctx := context.Background()

	// First sighting establishes the level; the symbol starts eligible.
	e.processEvent(ctx, quoteEvent(1_000_000, p1000, p1001, 5000, 1000))

	// Large print at the ask after the debounce with bids dominating.
	e.processEvent(ctx, tradeEvent(1_060_000, p1001, 200))

	if len(gw.submitted) != 1 {
		t.Fatalf("submitted = %d orders, want 1", len(gw.submitted))
	}
	ord := gw.submitted[0]
	if ord.Side != domain.SideBuy || ord.Qty != domain.Lot || ord.LimitPriceMicros != p1001 {
		t.Errorf("order = %+v, want buy 100 @ 10.01", ord)
	}
	if len(gw.cancelled) != 1 || gw.cancelled[0] != ord.ID {
		t.Errorf("cancelled = %v, want [%s]", gw.cancelled, ord.ID)
	}

	snap := e.Snapshot()
	if snap.PendingBuy != domain.Lot || snap.TotalShares != 0 {
		t.Errorf("after submit: %+v, want pending_buy=100 total=0", snap)
	}

	// A second qualifying print must not fire: eligibility was consumed.
	e.processEvent(ctx, tradeEvent(1_070_000, p1001, 200))
	if len(gw.submitted) != 1 {
		t.Errorf("submitted = %d orders after ineligible print, want 1", len(gw.submitted))
	}

	// The fill settles the lot.
	e.processEvent(ctx, orderUpdate(ord.ID, domain.UpdateFill, domain.SideBuy, domain.Lot))
	snap = e.Snapshot()
	if snap.TotalShares != domain.Lot || snap.PendingBuy != 0 {
		t.Errorf("after fill: %+v, want total=100 pending_buy=0", snap)
	}
	if e.LiveOrders() != 0 {
		t.Errorf("live orders = %d, want 0", e.LiveOrders())
	}
}

func TestEngine_LevelChangeRearmsAndSellUnwinds(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(gw, 500)
	ctx := context.Background()

	// Build a long lot first.
	e.processEvent(ctx, quoteEvent(1_000_000, p1000, p1001, 5000, 1000))
	e.processEvent(ctx, tradeEvent(1_060_000, p1001, 200))
	if len(gw.submitted) != 1 {
		t.Fatalf("submitted = %d orders, want 1", len(gw.submitted))
	}
	e.processEvent(ctx, orderUpdate(gw.submitted[0].ID, domain.UpdateFill, domain.SideBuy, domain.Lot))

	// Penny-to-penny move re-arms the symbol.
	e.processEvent(ctx, quoteEvent(2_000_000, p1001, p1002, 1000, 5000))

	// Big print at the bid with asks dominating: unwind.
	e.processEvent(ctx, tradeEvent(2_060_000, p1001, 300))
	if len(gw.submitted) != 2 {
		t.Fatalf("submitted = %d orders, want 2", len(gw.submitted))
	}
	sell := gw.submitted[1]
	if sell.Side != domain.SideSell || sell.LimitPriceMicros != p1001 {
		t.Errorf("order = %+v, want sell @ 10.01", sell)
	}

	e.processEvent(ctx, orderUpdate(sell.ID, domain.UpdateFill, domain.SideSell, domain.Lot))
	snap := e.Snapshot()
	if snap.TotalShares != 0 || snap.PendingSell != 0 {
		t.Errorf("after unwind: %+v, want flat", snap)
	}
}

func TestEngine_SubmitFailureKeepsEligibility(t *testing.T) {
	gw := &fakeGateway{submitErr: errors.New("venue down")}
	e := newTestEngine(gw, 500)
	ctx := context.Background()

	e.processEvent(ctx, quoteEvent(1_000_000, p1000, p1001, 5000, 1000))
	e.processEvent(ctx, tradeEvent(1_060_000, p1001, 200))

	snap := e.Snapshot()
	if snap.PendingBuy != 0 || e.LiveOrders() != 0 {
		t.Errorf("failed submit mutated ledger: %+v live=%d", snap, e.LiveOrders())
	}

	// Eligibility survives the failure; the next print retries.
	gw.submitErr = nil
	e.processEvent(ctx, tradeEvent(1_070_000, p1001, 200))
	if len(gw.submitted) != 1 {
		t.Errorf("submitted = %d orders after retry, want 1", len(gw.submitted))
	}
}

func TestEngine_CancelFailureStillRegisters(t *testing.T) {
	gw := &fakeGateway{cancelErr: errors.New("already done")}
	e := newTestEngine(gw, 500)
	ctx := context.Background()

	e.processEvent(ctx, quoteEvent(1_000_000, p1000, p1001, 5000, 1000))
	e.processEvent(ctx, tradeEvent(1_060_000, p1001, 200))

	if len(gw.submitted) != 1 {
		t.Fatalf("submitted = %d orders, want 1", len(gw.submitted))
	}
	if got := e.Snapshot().PendingBuy; got != domain.Lot {
		t.Errorf("pending buy = %d, want %d", got, domain.Lot)
	}
	if e.LiveOrders() != 1 {
		t.Errorf("live orders = %d, want 1", e.LiveOrders())
	}
}

func TestEngine_PartialThenFill(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(gw, 500)
	ctx := context.Background()

	e.processEvent(ctx, quoteEvent(1_000_000, p1000, p1001, 5000, 1000))
	e.processEvent(ctx, tradeEvent(1_060_000, p1001, 200))
	id := gw.submitted[0].ID

	e.processEvent(ctx, orderUpdate(id, domain.UpdatePartialFill, domain.SideBuy, 40))
	snap := e.Snapshot()
	if snap.TotalShares != 40 || snap.PendingBuy != 60 {
		t.Errorf("after partial: %+v, want total=40 pending_buy=60", snap)
	}

	e.processEvent(ctx, orderUpdate(id, domain.UpdateFill, domain.SideBuy, domain.Lot))
	snap = e.Snapshot()
	if snap.TotalShares != domain.Lot || snap.PendingBuy != 0 {
		t.Errorf("after fill: %+v, want total=100 pending_buy=0", snap)
	}
}

func TestEngine_CancelReleasesRemainder(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(gw, 500)
	ctx := context.Background()

	e.processEvent(ctx, quoteEvent(1_000_000, p1000, p1001, 5000, 1000))
	e.processEvent(ctx, tradeEvent(1_060_000, p1001, 200))
	id := gw.submitted[0].ID

	e.processEvent(ctx, orderUpdate(id, domain.UpdatePartialFill, domain.SideBuy, 40))
	e.processEvent(ctx, orderUpdate(id, domain.UpdateCanceled, domain.SideBuy, 40))

	snap := e.Snapshot()
	if snap.TotalShares != 40 || snap.PendingBuy != 0 {
		t.Errorf("after cancel: %+v, want total=40 pending_buy=0", snap)
	}
	if e.LiveOrders() != 0 {
		t.Errorf("live orders = %d, want 0", e.LiveOrders())
	}
}

func TestEngine_UnknownOrderUpdateIsTolerated(t *testing.T) {
	e := newTestEngine(&fakeGateway{}, 500)
	ctx := context.Background()

	e.processEvent(ctx, orderUpdate("ghost", domain.UpdateFill, domain.SideBuy, domain.Lot))

	snap := e.Snapshot()
	if snap.TotalShares != 0 || snap.PendingBuy != 0 {
		t.Errorf("unknown order mutated ledger: %+v", snap)
	}
}

func TestEngine_WideQuoteDoesNotTrigger(t *testing.T) {
	gw := &fakeGateway{}
	e := newTestEngine(gw, 500)
	ctx := context.Background()

	e.processEvent(ctx, quoteEvent(1_000_000, p1000, p1001, 5000, 1000))
	// Two-penny spread: stored level stays at 10.00/10.01.
	e.processEvent(ctx, quoteEvent(1_500_000, p1000, p1002, 5000, 1000))

	// Print at the stale stored ask still gates on the stored level.
	e.processEvent(ctx, tradeEvent(1_560_000, p1002, 200))
	if len(gw.submitted) != 0 {
		t.Errorf("submitted = %d orders on wide quote, want 0", len(gw.submitted))
	}
}
