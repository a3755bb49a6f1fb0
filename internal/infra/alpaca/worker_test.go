package alpaca

import (
	"context"
	"testing"

	"github.com/alpacahq/example-hftish/internal/event"
	"github.com/alpacahq/example-hftish/internal/infra"
	"github.com/alpacahq/example-hftish/pkg/quant"
)

func testStreamConfig() *infra.Config {
	cfg := &infra.Config{}
	cfg.API.Alpaca.KeyID = "PKTEST"
	cfg.API.Alpaca.SecretKey = "supersecret"
	cfg.API.Alpaca.DataWSURL = "wss://example.invalid/v2/iex"
	cfg.API.Alpaca.TradeWSURL = "wss://example.invalid/stream"
	cfg.Trading.Symbols = []string{"SNAP"}
	return cfg
}

func TestMarketWorker_OnMessageQuote(t *testing.T) {
	inbox := make(chan event.Event, 4)
	var seq uint64
	w := NewMarketWorker(testStreamConfig(), inbox, &seq)

	w.OnMessage(context.Background(),
		[]byte(`[{"T":"q","S":"SNAP","bp":10.00,"ap":10.01,"bs":50,"as":10,"t":"2024-01-02T15:04:05.123456789Z"}]`))

	select {
	case ev := <-inbox:
		q, ok := ev.(*event.QuoteEvent)
		if !ok {
			t.Fatalf("event type = %T, want QuoteEvent", ev)
		}
		if q.Symbol != "SNAP" {
			t.Errorf("symbol = %s", q.Symbol)
		}
		if q.BidPriceMicros != quant.PriceMicros(10_000_000) || q.AskPriceMicros != quant.PriceMicros(10_010_000) {
			t.Errorf("prices = %d/%d, want 10000000/10010000", q.BidPriceMicros, q.AskPriceMicros)
		}
		if q.BidSize != 50 || q.AskSize != 10 {
			t.Errorf("sizes = %d/%d, want 50/10", q.BidSize, q.AskSize)
		}
		if q.Ts == 0 {
			t.Error("timestamp not parsed")
		}
		if q.Seq == 0 {
			t.Error("sequence not assigned")
		}
	default:
		t.Fatal("no event in inbox")
	}
}

func TestMarketWorker_OnMessageTrade(t *testing.T) {
	inbox := make(chan event.Event, 4)
	var seq uint64
	w := NewMarketWorker(testStreamConfig(), inbox, &seq)

	w.OnMessage(context.Background(),
		[]byte(`[{"T":"t","S":"SNAP","p":10.01,"s":200,"t":"2024-01-02T15:04:05Z"}]`))

	select {
	case ev := <-inbox:
		tr, ok := ev.(*event.TradeEvent)
		if !ok {
			t.Fatalf("event type = %T, want TradeEvent", ev)
		}
		if tr.PriceMicros != quant.PriceMicros(10_010_000) || tr.Size != 200 {
			t.Errorf("trade = %d x %d, want 10010000 x 200", tr.PriceMicros, tr.Size)
		}
	default:
		t.Fatal("no event in inbox")
	}
}

func TestMarketWorker_OnMessageIgnoresJunk(t *testing.T) {
	inbox := make(chan event.Event, 4)
	var seq uint64
	w := NewMarketWorker(testStreamConfig(), inbox, &seq)

	w.OnMessage(context.Background(), []byte(`not json`))
	w.OnMessage(context.Background(), []byte(`[{"T":"subscription","quotes":["SNAP"]}]`))

	select {
	case ev := <-inbox:
		t.Fatalf("unexpected event %T in inbox", ev)
	default:
	}
}

func TestMarketWorker_FullInboxDropsNotBlocks(t *testing.T) {
	inbox := make(chan event.Event) // unbuffered, nobody reading
	var seq uint64
	w := NewMarketWorker(testStreamConfig(), inbox, &seq)

	// Must return instead of blocking the read loop.
	w.OnMessage(context.Background(),
		[]byte(`[{"T":"q","S":"SNAP","bp":10.00,"ap":10.01,"bs":1,"as":1,"t":"2024-01-02T15:04:05Z"}]`))
}

func TestTradeUpdateWorker_OnMessageFill(t *testing.T) {
	inbox := make(chan event.Event, 4)
	var seq uint64
	w := NewTradeUpdateWorker(testStreamConfig(), inbox, &seq)

	w.OnMessage(context.Background(), []byte(`{
		"stream": "trade_updates",
		"data": {
			"event": "partial_fill",
			"order": {"id": "venue-id-1", "side": "buy", "filled_qty": "40"}
		}
	}`))

	select {
	case ev := <-inbox:
		up, ok := ev.(*event.OrderUpdateEvent)
		if !ok {
			t.Fatalf("event type = %T, want OrderUpdateEvent", ev)
		}
		if up.OrderID != "venue-id-1" || up.Kind != "partial_fill" || up.Side != "buy" {
			t.Errorf("update = %+v", up)
		}
		if up.FilledQty != 40 {
			t.Errorf("filled qty = %d, want 40", up.FilledQty)
		}
	default:
		t.Fatal("no event in inbox")
	}
}

func TestTradeUpdateWorker_IgnoresOtherEvents(t *testing.T) {
	inbox := make(chan event.Event, 4)
	var seq uint64
	w := NewTradeUpdateWorker(testStreamConfig(), inbox, &seq)

	w.OnMessage(context.Background(),
		[]byte(`{"stream":"trade_updates","data":{"event":"new","order":{"id":"x","side":"buy","filled_qty":"0"}}}`))
	w.OnMessage(context.Background(),
		[]byte(`{"stream":"authorization","data":{"status":"authorized"}}`))

	select {
	case ev := <-inbox:
		t.Fatalf("unexpected event %T in inbox", ev)
	default:
	}
}

func TestParseWholeShares(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"100", 100},
		{"40", 40},
		{"100.5", 100},
		{"0", 0},
		{"", 0},
		{"garbage", 0},
	}
	for _, tt := range tests {
		if got := parseWholeShares(tt.in); got != tt.want {
			t.Errorf("parseWholeShares(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseStreamTime(t *testing.T) {
	ts := parseStreamTime("2024-01-02T15:04:05.5Z")
	if ts == 0 {
		t.Fatal("expected parsed timestamp")
	}
	if ts%1_000_000 != 500_000 {
		t.Errorf("sub-second part = %d micros, want 500000", ts%1_000_000)
	}

	if got := parseStreamTime("not a time"); got != 0 {
		t.Errorf("malformed input = %d, want 0", got)
	}
}
