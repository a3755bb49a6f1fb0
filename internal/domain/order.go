package domain

import (
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// Lot is the fixed trade unit. Every order attempt is for exactly one lot.
const Lot int64 = 100

// Side of an order.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// UpdateKind is an order lifecycle event reported by the venue.
type UpdateKind string

const (
	UpdateFill        UpdateKind = "fill"
	UpdatePartialFill UpdateKind = "partial_fill"
	UpdateCanceled    UpdateKind = "canceled"
	UpdateRejected    UpdateKind = "rejected"
)

// Terminal reports whether the update finalizes the order.
func (k UpdateKind) Terminal() bool {
	return k == UpdateFill || k == UpdateCanceled || k == UpdateRejected
}

// Order represents a single limit order attempt. ID is empty until the
// gateway accepts the order.
type Order struct {
	ID               string
	Symbol           string
	Side             Side
	Qty              int64
	LimitPriceMicros quant.PriceMicros
	SubmittedUnixM   quant.TimeStamp
}

// Trade is a single trade print from the market data stream.
type Trade struct {
	Symbol      string
	PriceMicros quant.PriceMicros
	Size        int64
	At          quant.TimeStamp
}
