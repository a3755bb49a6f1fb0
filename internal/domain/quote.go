package domain

import (
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// QuoteState is the per-symbol top-of-book state machine. A move of the bid
// and ask by exactly one penny is a "level change"; wider moves could mean a
// newsworthy repricing the strategy is not tuned for, so they leave the
// stored bid/ask untouched.
type QuoteState struct {
	Bid        quant.PriceMicros
	Ask        quant.PriceMicros
	PrevBid    quant.PriceMicros
	PrevAsk    quant.PriceMicros
	Spread     quant.PriceMicros // ask-bid rounded to 3 decimals
	PrevSpread quant.PriceMicros
	BidSize    int64
	AskSize    int64

	// Eligible is the symbol's permission to trigger at most one order per
	// detected level. False between an order attempt and the next qualifying
	// level change.
	Eligible   bool
	LevelCount int64
	LastChange quant.TimeStamp
}

// LevelChange is the diagnostic record emitted when a qualifying level
// change fires.
type LevelChange struct {
	Symbol     string
	PrevBid    quant.PriceMicros
	PrevAsk    quant.PriceMicros
	PrevSpread quant.PriceMicros
	Bid        quant.PriceMicros
	Ask        quant.PriceMicros
	Spread     quant.PriceMicros
	At         quant.TimeStamp
}

// QuoteBook owns all per-symbol quote state. It is pure state transition
// logic with no I/O; callers must serialize access per symbol.
type QuoteBook struct {
	states map[string]*QuoteState
}

// NewQuoteBook creates an empty book.
func NewQuoteBook() *QuoteBook {
	return &QuoteBook{states: make(map[string]*QuoteState)}
}

// Lookup returns the symbol's state, lazily creating it with defaults on
// first sight. A fresh symbol starts eligible.
func (b *QuoteBook) Lookup(symbol string) *QuoteState {
	st, ok := b.states[symbol]
	if !ok {
		st = &QuoteState{Eligible: true, LevelCount: 1}
		b.states[symbol] = st
	}
	return st
}

// Update applies a top-of-book quote. Sizes always refresh; bid/ask only
// move on a qualifying level change (both prices changed and the new spread
// rounds to exactly one penny). Returns the diagnostic record when a level
// change fired.
func (b *QuoteBook) Update(symbol string, bid, ask quant.PriceMicros, bidSize, askSize int64, ts quant.TimeStamp) (LevelChange, bool) {
	st := b.Lookup(symbol)

	st.BidSize = bidSize
	st.AskSize = askSize

	if bid == st.Bid || ask == st.Ask || quant.RoundToCent(ask-bid) != quant.CentMicros {
		return LevelChange{}, false
	}

	st.PrevBid = st.Bid
	st.PrevAsk = st.Ask
	st.Bid = bid
	st.Ask = ask
	st.LastChange = ts

	st.PrevSpread = quant.RoundToMilli(st.PrevAsk - st.PrevBid)
	st.Spread = quant.RoundToMilli(st.Ask - st.Bid)

	// Only a move from one penny-spread level to another re-arms trading.
	// The very first level after startup has PrevSpread == 0 and does not.
	if st.PrevSpread == quant.CentMicros {
		st.Eligible = true
		st.LevelCount++
	}

	return LevelChange{
		Symbol:     symbol,
		PrevBid:    st.PrevBid,
		PrevAsk:    st.PrevAsk,
		PrevSpread: st.PrevSpread,
		Bid:        st.Bid,
		Ask:        st.Ask,
		Spread:     st.Spread,
		At:         ts,
	}, true
}
