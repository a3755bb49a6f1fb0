package execution

import (
	"context"

	"github.com/alpacahq/example-hftish/internal/domain"
)

// Gateway defines the interface for order submission and cancellation.
// Both calls block on the network; failures are returned, never retried.
type Gateway interface {
	// SubmitOrder sends a new order to the venue and returns its order id.
	SubmitOrder(ctx context.Context, order domain.Order) (string, error)

	// CancelOrder cancels a working order by id. Cancelling an order that
	// already reached a terminal state is an error.
	CancelOrder(ctx context.Context, orderID string) error
}
