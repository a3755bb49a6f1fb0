package alpaca

import (
	"encoding/json"
	"time"

	"github.com/alpacahq/example-hftish/pkg/quant"
)

// streamMsg is one element of a market data stream frame. The v2 stream
// multiplexes message kinds over a single array; "T" discriminates.
// Prices use json.Number so the hotpath never touches float64.
type streamMsg struct {
	Type   string `json:"T"` // "q" quote, "t" trade, "success", "error", "subscription"
	Symbol string `json:"S"`

	// Quote fields
	BidPrice json.Number `json:"bp"`
	AskPrice json.Number `json:"ap"`
	BidSize  int64       `json:"bs"`
	AskSize  int64       `json:"as"`

	// Trade fields
	Price json.Number `json:"p"`
	Size  int64       `json:"s"`

	Timestamp string `json:"t"`

	// Error fields
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// tradeUpdateMsg is a frame from the trade_updates stream.
type tradeUpdateMsg struct {
	Stream string `json:"stream"`
	Data   struct {
		Event string `json:"event"`
		Order struct {
			ID        string `json:"id"`
			Side      string `json:"side"`
			FilledQty string `json:"filled_qty"`
		} `json:"order"`
	} `json:"data"`
}

// orderRequest is the REST order submission body. Numeric fields are
// strings on the wire.
type orderRequest struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	Type          string `json:"type"`
	TimeInForce   string `json:"time_in_force"`
	LimitPrice    string `json:"limit_price"`
	ClientOrderID string `json:"client_order_id"`
}

// orderResponse is the subset of the REST order body we need.
type orderResponse struct {
	ID string `json:"id"`
}

// parseStreamTime converts an RFC3339 stream timestamp to unix micros.
// Returns 0 on malformed input; the caller treats that as "now-ish".
func parseStreamTime(s string) quant.TimeStamp {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0
	}
	return quant.TimeStamp(t.UnixMicro())
}
