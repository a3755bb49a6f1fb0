package execution

import (
	"context"
	"log/slog"

	"github.com/rs/xid"

	"github.com/alpacahq/example-hftish/internal/domain"
)

// MockGateway only logs orders. It never produces order updates, so pending
// shares accumulate in the caller's ledger; use it for wiring checks only.
type MockGateway struct{}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) SubmitOrder(ctx context.Context, order domain.Order) (string, error) {
	id := xid.New().String()
	slog.Info("MOCK GATEWAY: Submit Order",
		slog.String("id", id),
		slog.String("symbol", order.Symbol),
		slog.String("side", string(order.Side)),
		slog.Int64("qty", order.Qty),
		slog.String("limit", order.LimitPriceMicros.String()),
	)
	return id, nil
}

func (m *MockGateway) CancelOrder(ctx context.Context, orderID string) error {
	slog.Info("MOCK GATEWAY: Cancel Order", slog.String("id", orderID))
	return nil
}
