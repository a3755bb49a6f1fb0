package alpaca

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/infra"
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// MarketWorker handles the market data WebSocket: it authenticates,
// subscribes to quote and trade channels for the configured symbols, and
// pushes parsed events into the engine inbox.
type MarketWorker struct {
	base      *infra.BaseWSWorker
	url       string
	keyID     string
	secretKey string
	symbols   []string
	inbox     chan<- event.Event
	seq       *uint64
}

// NewMarketWorker creates a market data worker.
func NewMarketWorker(cfg *infra.Config, inbox chan<- event.Event, seq *uint64) *MarketWorker {
	w := &MarketWorker{
		url:       cfg.API.Alpaca.DataWSURL,
		keyID:     cfg.API.Alpaca.KeyID,
		secretKey: cfg.API.Alpaca.SecretKey,
		symbols:   cfg.Trading.Symbols,
		inbox:     inbox,
		seq:       seq,
	}
	w.base = infra.NewBaseWSWorker(w)
	return w
}

// ID returns the worker identifier.
func (w *MarketWorker) ID() string { return "ALPACA_DATA" }

// GetURL returns the stream endpoint.
func (w *MarketWorker) GetURL() string { return w.url }

// Connect starts the WebSocket connection.
func (w *MarketWorker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect terminates the connection.
func (w *MarketWorker) Disconnect() {
	w.base.Stop()
}

// OnConnect authenticates and subscribes.
func (w *MarketWorker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	auth := map[string]string{
		"action": "auth",
		"key":    w.keyID,
		"secret": w.secretKey,
	}
	b, _ := json.Marshal(auth)
	if err := w.base.Write(websocket.TextMessage, b); err != nil {
		return err
	}

	sub := map[string]any{
		"action": "subscribe",
		"quotes": w.symbols,
		"trades": w.symbols,
	}
	b, _ = json.Marshal(sub)
	return w.base.Write(websocket.TextMessage, b)
}

// OnMessage parses a stream frame. Frames are arrays of messages with a
// "T" discriminator.
func (w *MarketWorker) OnMessage(ctx context.Context, msg []byte) {
	var frames []streamMsg
	if err := json.Unmarshal(msg, &frames); err != nil {
		return
	}

	for i := range frames {
		switch frames[i].Type {
		case "q":
			w.pushQuote(&frames[i])
		case "t":
			w.pushTrade(&frames[i])
		case "error":
			slog.Error("Stream error", "code", frames[i].Code, "msg", frames[i].Msg)
		}
	}
}

func (w *MarketWorker) pushQuote(m *streamMsg) {
	ev := event.AcquireQuoteEvent()
	ev.Seq = quant.NextSeq(w.seq)
	ev.Ts = parseStreamTime(m.Timestamp)
	ev.Symbol = m.Symbol
	ev.BidPriceMicros = quant.ToPriceMicrosStr(m.BidPrice.String())
	ev.AskPriceMicros = quant.ToPriceMicrosStr(m.AskPrice.String())
	ev.BidSize = m.BidSize
	ev.AskSize = m.AskSize

	select {
	case w.inbox <- ev:
	default:
		// Drop if inbox is full, but release to pool to prevent leak.
		event.ReleaseQuoteEvent(ev)
	}
}

func (w *MarketWorker) pushTrade(m *streamMsg) {
	ev := event.AcquireTradeEvent()
	ev.Seq = quant.NextSeq(w.seq)
	ev.Ts = parseStreamTime(m.Timestamp)
	ev.Symbol = m.Symbol
	ev.PriceMicros = quant.ToPriceMicrosStr(m.Price.String())
	ev.Size = m.Size

	select {
	case w.inbox <- ev:
	default:
		event.ReleaseTradeEvent(ev)
	}
}

// OnPing keeps intermediaries from idling out the connection.
func (w *MarketWorker) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return w.base.Write(websocket.PingMessage, nil)
}
