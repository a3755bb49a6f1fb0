package strategy

import (
	"github.com/alpacahq/example-hftish/internal/domain"
	"github.com/alpacahq/example-hftish/pkg/quant"
	"github.com/alpacahq/example-hftish/pkg/safe"
)

const (
	// DebounceMicros is how long after a level change a trade is assumed to
	// belong to the previous level and is ignored.
	DebounceMicros quant.TimeStamp = 50_000

	// minFollowSize is the smallest trade print considered informative
	// order flow.
	minFollowSize int64 = 100

	// Imbalance ratio of 1.8x expressed as an integer fraction so the
	// hotpath stays float-free.
	imbalanceNum   int64 = 18
	imbalanceDenom int64 = 10
)

// TickFollow follows large trades that confirm order-flow imbalance right
// after a one-penny level change, one lot per detected level, under a
// position cap.
type TickFollow struct {
	maxShares int64
}

// NewTickFollow creates the rule for the given aggregate position cap.
func NewTickFollow(maxShares int64) *TickFollow {
	return &TickFollow{maxShares: maxShares}
}

// OnTrade applies the gating conditions in order; any failure is a no-op.
func (s *TickFollow) OnTrade(st *domain.QuoteState, pos domain.PositionSnapshot, trade domain.Trade) (domain.Order, bool) {
	if st == nil || !st.Eligible {
		return domain.Order{}, false
	}

	// Too close to the level change: the print may be for the old level.
	if trade.At <= st.LastChange+DebounceMicros {
		return domain.Order{}, false
	}

	if trade.Size < minFollowSize {
		return domain.Order{}, false
	}

	if trade.PriceMicros == st.Ask &&
		dominates(st.BidSize, st.AskSize) &&
		safe.SafeAdd(pos.TotalShares, pos.PendingBuy) < s.maxShares-domain.Lot {
		return domain.Order{
			Symbol:           trade.Symbol,
			Side:             domain.SideBuy,
			Qty:              domain.Lot,
			LimitPriceMicros: st.Ask,
		}, true
	}

	if trade.PriceMicros == st.Bid &&
		dominates(st.AskSize, st.BidSize) &&
		safe.SafeSub(pos.TotalShares, pos.PendingSell) >= domain.Lot {
		return domain.Order{
			Symbol:           trade.Symbol,
			Side:             domain.SideSell,
			Qty:              domain.Lot,
			LimitPriceMicros: st.Bid,
		}, true
	}

	return domain.Order{}, false
}

// dominates reports whether a exceeds b by more than the imbalance ratio.
func dominates(a, b int64) bool {
	return safe.SafeMul(a, imbalanceDenom) > safe.SafeMul(b, imbalanceNum)
}
