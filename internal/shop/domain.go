// internal/shop/domain.go
package shop

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Order is a merchandise purchase. Orders created by settlement are
// keyed by the payment that produced them; that key is the idempotency
// guard against double materialization.
type Order struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	PaymentID *uuid.UUID  `json:"payment_id,omitempty"`
	Reference string      `json:"reference,omitempty"`
	Items     []OrderItem `json:"items"`
	Subtotal  int64       `json:"subtotal"`
	Tax       int64       `json:"tax"`
	Total     int64       `json:"total"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

// OrderItem is one purchased product line.
type OrderItem struct {
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

var ErrDuplicateOrder = errors.New("order already exists for payment")
