package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alpacahq/example-hftish/internal/domain"
	"github.com/alpacahq/example-hftish/internal/infra"
)

// Client handles the trading REST API: order submission and cancellation.
// All calls are rate limited through the shared order limiter.
type Client struct {
	baseURL   string
	keyID     string
	secretKey string
	http      *http.Client
	limiter   *infra.RateLimiter
}

// NewClient creates a REST client from config.
func NewClient(cfg *infra.Config) *Client {
	return &Client{
		baseURL:   cfg.API.Alpaca.BaseURL,
		keyID:     cfg.API.Alpaca.KeyID,
		secretKey: cfg.API.Alpaca.SecretKey,
		http:      &http.Client{Timeout: 10 * time.Second},
		limiter:   infra.GetOrderLimiter(),
	}
}

// SubmitOrder posts a day limit order and returns the venue's order id.
func (c *Client) SubmitOrder(ctx context.Context, order domain.Order) (string, error) {
	c.limiter.Wait()

	req := orderRequest{
		Symbol:        order.Symbol,
		Qty:           strconv.FormatInt(order.Qty, 10),
		Side:          string(order.Side),
		Type:          "limit",
		TimeInForce:   "day",
		LimitPrice:    decimal.New(int64(order.LimitPriceMicros), -6).String(),
		ClientOrderID: uuid.NewString(),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal order: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setAuth(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("submit order: status %d: %s", resp.StatusCode, msg)
	}

	var out orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("order response missing id")
	}

	return out.ID, nil
}

// CancelOrder deletes a working order. The venue answers with an error
// status when the order is already terminal.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	c.limiter.Wait()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/v2/orders/"+orderID, nil)
	if err != nil {
		return err
	}
	c.setAuth(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("cancel order %s: status %d: %s", orderID, resp.StatusCode, msg)
	}

	return nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)
}
