package alpaca

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/infra"
	"github.com/alpacahq/example-hftish/pkg/quant"
)

// TradeUpdateWorker handles the account stream that reports order
// lifecycle events for orders submitted through the REST client.
type TradeUpdateWorker struct {
	base      *infra.BaseWSWorker
	url       string
	keyID     string
	secretKey string
	inbox     chan<- event.Event
	seq       *uint64
}

// NewTradeUpdateWorker creates an order update worker.
func NewTradeUpdateWorker(cfg *infra.Config, inbox chan<- event.Event, seq *uint64) *TradeUpdateWorker {
	w := &TradeUpdateWorker{
		url:       cfg.API.Alpaca.TradeWSURL,
		keyID:     cfg.API.Alpaca.KeyID,
		secretKey: cfg.API.Alpaca.SecretKey,
		inbox:     inbox,
		seq:       seq,
	}
	w.base = infra.NewBaseWSWorker(w)
	return w
}

// ID returns the worker identifier.
func (w *TradeUpdateWorker) ID() string { return "ALPACA_TRADE_UPDATES" }

// GetURL returns the stream endpoint.
func (w *TradeUpdateWorker) GetURL() string { return w.url }

// Connect starts the WebSocket connection.
func (w *TradeUpdateWorker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect terminates the connection.
func (w *TradeUpdateWorker) Disconnect() {
	w.base.Stop()
}

// OnConnect authenticates and subscribes to the trade_updates channel.
func (w *TradeUpdateWorker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	auth := map[string]any{
		"action": "authenticate",
		"data": map[string]string{
			"key_id":     w.keyID,
			"secret_key": w.secretKey,
		},
	}
	b, _ := json.Marshal(auth)
	if err := w.base.Write(websocket.TextMessage, b); err != nil {
		return err
	}

	listen := map[string]any{
		"action": "listen",
		"data": map[string][]string{
			"streams": {"trade_updates"},
		},
	}
	b, _ = json.Marshal(listen)
	return w.base.Write(websocket.TextMessage, b)
}

// OnMessage maps order lifecycle frames into OrderUpdateEvents. Events
// other than the four the ledger tracks (new, done_for_day, ...) are
// dropped here.
func (w *TradeUpdateWorker) OnMessage(ctx context.Context, msg []byte) {
	var frame tradeUpdateMsg
	if err := json.Unmarshal(msg, &frame); err != nil || frame.Stream != "trade_updates" {
		return
	}

	switch frame.Data.Event {
	case "fill", "partial_fill", "canceled", "rejected":
	default:
		return
	}

	ev := &event.OrderUpdateEvent{
		BaseEvent: event.BaseEvent{
			Seq: quant.NextSeq(w.seq),
			Ts:  quant.TimeStamp(time.Now().UnixMicro()),
		},
		OrderID:   frame.Data.Order.ID,
		Kind:      frame.Data.Event,
		Side:      frame.Data.Order.Side,
		FilledQty: parseWholeShares(frame.Data.Order.FilledQty),
	}

	select {
	case w.inbox <- ev:
	default:
	}
}

// OnPing keeps the account stream alive.
func (w *TradeUpdateWorker) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return w.base.Write(websocket.PingMessage, nil)
}

// parseWholeShares reads the integer share count out of a wire quantity
// string, tolerating a fractional suffix.
func parseWholeShares(s string) int64 {
	if dot := strings.IndexByte(s, '.'); dot != -1 {
		s = s[:dot]
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
