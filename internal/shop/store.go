// internal/shop/store.go
package shop

import (
	"context"

	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, o *Order) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error)

	// ExistsForPayment reports whether an order already references the
	// given payment.
	ExistsForPayment(ctx context.Context, paymentID uuid.UUID) (bool, error)
}
