package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/alpacahq/example-hftish/pkg/quant"
)

// feedcheck connects to the market data stream, subscribes to one symbol,
// and prints the first quotes and trades it sees. Useful for verifying
// credentials and feed entitlement before running the trader.

func main() {
	symbol := flag.String("symbol", "SNAP", "symbol to subscribe to")
	url := flag.String("url", "wss://stream.data.alpaca.markets/v2/iex", "stream endpoint")
	count := flag.Int("n", 10, "number of messages to print")
	flag.Parse()

	_ = godotenv.Load()
	key := os.Getenv("APCA_API_KEY_ID")
	secret := os.Getenv("APCA_API_SECRET_KEY")
	if key == "" || secret == "" {
		fmt.Println("ERROR: APCA_API_KEY_ID / APCA_API_SECRET_KEY not set")
		os.Exit(1)
	}

	fmt.Println("=== Market Data Feed Check ===")
	fmt.Printf("endpoint: %s\n", *url)
	fmt.Printf("symbol:   %s\n\n", *symbol)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(*url, nil)
	if err != nil {
		fmt.Printf("ERROR: dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	send(conn, map[string]string{"action": "auth", "key": key, "secret": secret})
	send(conn, map[string]any{
		"action": "subscribe",
		"quotes": []string{*symbol},
		"trades": []string{*symbol},
	})

	printed := 0
	for printed < *count {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			fmt.Printf("ERROR: read failed: %v\n", err)
			os.Exit(1)
		}

		var frames []struct {
			Type     string      `json:"T"`
			Symbol   string      `json:"S"`
			BidPrice json.Number `json:"bp"`
			AskPrice json.Number `json:"ap"`
			BidSize  int64       `json:"bs"`
			AskSize  int64       `json:"as"`
			Price    json.Number `json:"p"`
			Size     int64       `json:"s"`
			Msg      string      `json:"msg"`
		}
		if err := json.Unmarshal(msg, &frames); err != nil {
			continue
		}

		for _, f := range frames {
			switch f.Type {
			case "q":
				bid := quant.ToPriceMicrosStr(f.BidPrice.String())
				ask := quant.ToPriceMicrosStr(f.AskPrice.String())
				fmt.Printf("QUOTE %s  bid %s x %d   ask %s x %d   spread %s\n",
					f.Symbol, bid.String(), f.BidSize, ask.String(), f.AskSize,
					quant.RoundToMilli(ask-bid).String())
				printed++
			case "t":
				p := quant.ToPriceMicrosStr(f.Price.String())
				fmt.Printf("TRADE %s  %d @ %s\n", f.Symbol, f.Size, p.String())
				printed++
			case "success", "subscription":
				fmt.Printf("OK: %s\n", string(msg))
			case "error":
				fmt.Printf("STREAM ERROR: %s\n", f.Msg)
				os.Exit(1)
			}
		}
	}

	fmt.Println("\nFeed looks healthy.")
}

func send(conn *websocket.Conn, payload any) {
	b, _ := json.Marshal(payload)
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		fmt.Printf("ERROR: write failed: %v\n", err)
		os.Exit(1)
	}
}
