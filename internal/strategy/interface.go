package strategy

import (
	"github.com/alpacahq/example-hftish/internal/domain"
)

// Strategy decides whether a trade print should be followed with an order.
// Implementations must be pure: they read state and return an intent, they
// never perform I/O or mutate the books.
type Strategy interface {
	// OnTrade evaluates one trade print against the symbol's quote state and
	// the current position. It returns the order to submit and true when all
	// gating conditions pass.
	OnTrade(st *domain.QuoteState, pos domain.PositionSnapshot, trade domain.Trade) (domain.Order, bool)
}
