package domain

import (
	"errors"
	"fmt"

	"github.com/alpacahq/example-hftish/pkg/safe"
)

// ErrUnknownOrder is returned when an order update references an order the
// ledger never registered or already finalized. It signals a missed
// registration or a duplicate terminal event and must be surfaced, not
// swallowed.
var ErrUnknownOrder = errors.New("unknown order id")

// PositionSnapshot is a read-only copy of the ledger counters for decision
// logic and external observers.
type PositionSnapshot struct {
	TotalShares int64
	PendingBuy  int64
	PendingSell int64
}

// PositionBook tracks filled and pending share counts across asynchronously
// arriving order updates. Orders may be partially filled, so per-order
// filled-so-far amounts are kept until the order reaches a terminal state.
// Pure state transition logic with no I/O; callers must serialize access.
type PositionBook struct {
	totalShares int64
	pendingBuy  int64
	pendingSell int64
	filled      map[string]int64 // order id -> shares filled so far
}

// NewPositionBook creates an empty ledger.
func NewPositionBook() *PositionBook {
	return &PositionBook{filled: make(map[string]int64)}
}

// Register records a newly submitted one-lot order: the full lot becomes
// pending on its side and the order starts with zero filled.
func (p *PositionBook) Register(orderID string, side Side) {
	if side == SideBuy {
		p.pendingBuy = safe.SafeAdd(p.pendingBuy, Lot)
	} else {
		p.pendingSell = safe.SafeAdd(p.pendingSell, Lot)
	}
	p.filled[orderID] = 0
}

// Apply folds one order update into the ledger. filledQty is the cumulative
// filled amount reported by the venue. Terminal events release the unfilled
// remainder and drop the order's entry. An unknown order id or an
// out-of-range filled quantity is a reportable inconsistency.
func (p *PositionBook) Apply(orderID string, kind UpdateKind, side Side, filledQty int64) error {
	prev, ok := p.filled[orderID]
	if !ok {
		return fmt.Errorf("%w: %q (%s)", ErrUnknownOrder, orderID, kind)
	}
	if filledQty < 0 || filledQty > Lot {
		return fmt.Errorf("order %q: filled qty %d out of range [0, %d]", orderID, filledQty, Lot)
	}

	switch kind {
	case UpdateFill:
		// Cumulative: settle only what partial fills have not already moved,
		// then release whatever never filled.
		if filledQty < prev {
			filledQty = prev
		}
		p.settle(side, filledQty-prev)
		p.release(side, Lot-filledQty)
		delete(p.filled, orderID)

	case UpdatePartialFill:
		// Non-positive delta means an out-of-order or duplicate update.
		if delta := filledQty - prev; delta > 0 {
			p.settle(side, delta)
			p.filled[orderID] = filledQty
		}

	case UpdateCanceled, UpdateRejected:
		p.release(side, Lot-prev)
		delete(p.filled, orderID)

	default:
		return fmt.Errorf("order %q: unhandled update kind %q", orderID, kind)
	}

	return nil
}

// settle moves qty shares from pending into the net position, signed by side.
func (p *PositionBook) settle(side Side, qty int64) {
	if qty <= 0 {
		return
	}
	if side == SideBuy {
		p.pendingBuy = safe.SafeSub(p.pendingBuy, qty)
		p.totalShares = safe.SafeAdd(p.totalShares, qty)
	} else {
		p.pendingSell = safe.SafeSub(p.pendingSell, qty)
		p.totalShares = safe.SafeSub(p.totalShares, qty)
	}
}

// release drops qty shares from the pending counter without filling them.
func (p *PositionBook) release(side Side, qty int64) {
	if qty <= 0 {
		return
	}
	if side == SideBuy {
		p.pendingBuy = safe.SafeSub(p.pendingBuy, qty)
	} else {
		p.pendingSell = safe.SafeSub(p.pendingSell, qty)
	}
}

// Snapshot returns a copy of the counters.
func (p *PositionBook) Snapshot() PositionSnapshot {
	return PositionSnapshot{
		TotalShares: p.totalShares,
		PendingBuy:  p.pendingBuy,
		PendingSell: p.pendingSell,
	}
}

// LiveOrders returns the number of orders awaiting a terminal update.
func (p *PositionBook) LiveOrders() int {
	return len(p.filled)
}
