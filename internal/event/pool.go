package event

import (
	"sync"
)

// Quotes dominate the event stream by an order of magnitude, so the two
// market data event kinds are pooled to keep the hotpath allocation-free.

var quotePool = sync.Pool{
	New: func() any { return new(QuoteEvent) },
}

var tradePool = sync.Pool{
	New: func() any { return new(TradeEvent) },
}

// AcquireQuoteEvent returns a zeroed QuoteEvent from the pool.
func AcquireQuoteEvent() *QuoteEvent {
	return quotePool.Get().(*QuoteEvent)
}

// ReleaseQuoteEvent resets the event and returns it to the pool.
func ReleaseQuoteEvent(ev *QuoteEvent) {
	*ev = QuoteEvent{}
	quotePool.Put(ev)
}

// AcquireTradeEvent returns a zeroed TradeEvent from the pool.
func AcquireTradeEvent() *TradeEvent {
	return tradePool.Get().(*TradeEvent)
}

// ReleaseTradeEvent resets the event and returns it to the pool.
func ReleaseTradeEvent(ev *TradeEvent) {
	*ev = TradeEvent{}
	tradePool.Put(ev)
}

// Warmup pre-populates the pools so the first burst after connect does not
// allocate.
func Warmup() {
	const n = 256
	quotes := make([]*QuoteEvent, 0, n)
	trades := make([]*TradeEvent, 0, n)
	for i := 0; i < n; i++ {
		quotes = append(quotes, AcquireQuoteEvent())
		trades = append(trades, AcquireTradeEvent())
	}
	for i := 0; i < n; i++ {
		ReleaseQuoteEvent(quotes[i])
		ReleaseTradeEvent(trades[i])
	}
}
