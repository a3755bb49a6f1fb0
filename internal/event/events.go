package event

import (
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvQuote Type = iota + 1
	EvTrade
	EvOrderUpdate
)

// Event is the interface for everything flowing through the engine inbox.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64          `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// QuoteEvent is a top-of-book quote update for one symbol.
type QuoteEvent struct {
	BaseEvent
	Symbol         string            `json:"symbol"`
	BidPriceMicros quant.PriceMicros `json:"bid"`
	AskPriceMicros quant.PriceMicros `json:"ask"`
	BidSize        int64             `json:"bid_size"`
	AskSize        int64             `json:"ask_size"`
}

func (e QuoteEvent) GetType() Type { return EvQuote }

// TradeEvent is a single trade print.
type TradeEvent struct {
	BaseEvent
	Symbol      string            `json:"symbol"`
	PriceMicros quant.PriceMicros `json:"price"`
	Size        int64             `json:"size"`
}

func (e TradeEvent) GetType() Type { return EvTrade }

// OrderUpdateEvent reports an order lifecycle change from the venue.
// Kind and Side carry the wire strings; the engine maps them to domain types.
type OrderUpdateEvent struct {
	BaseEvent
	OrderID   string `json:"order_id"`
	Kind      string `json:"kind"` // fill, partial_fill, canceled, rejected
	Side      string `json:"side"` // buy, sell
	FilledQty int64  `json:"filled_qty"`
}

func (e OrderUpdateEvent) GetType() Type { return EvOrderUpdate }
