// internal/payment/domain.go
package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the settlement lifecycle state. pending->success and
// pending->failed are the only transitions the service performs;
// success->refunded is an administrator action.
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// ItemType tags a checkout line item. The set is closed: anything else
// is rejected at validation time.
type ItemType string

const (
	ItemEnrollment ItemType = "enrollment"
	ItemMembership ItemType = "membership"
	ItemProduct    ItemType = "product"
)

// LineItem is one purchased entitlement, recorded with the settlement
// so it can be replayed at materialization time.
type LineItem struct {
	Type   ItemType `json:"type"`
	Label  string   `json:"label,omitempty"`
	Amount int64    `json:"amount"`

	// enrollment items
	ProgramID uuid.UUID `json:"program_id,omitempty"`
	ChildName string    `json:"child_name,omitempty"`
	ChildAge  int       `json:"child_age,omitempty"`

	// product items
	Name     string `json:"name,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// Validate checks the variant-specific shape of the item.
func (i LineItem) Validate() error {
	if i.Amount <= 0 {
		return fmt.Errorf("%w: item amount must be positive", ErrValidation)
	}
	switch i.Type {
	case ItemEnrollment:
		if i.ProgramID == uuid.Nil {
			return fmt.Errorf("%w: enrollment item requires program_id", ErrValidation)
		}
		if i.ChildName == "" {
			return fmt.Errorf("%w: enrollment item requires child_name", ErrValidation)
		}
	case ItemMembership:
	case ItemProduct:
		if i.Name == "" {
			return fmt.Errorf("%w: product item requires name", ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unrecognized item type %q", ErrValidation, i.Type)
	}
	return nil
}

// Record is the durable record of one payment attempt. Amounts are in
// the currency major unit (NGN); the gateway boundary converts to kobo.
type Record struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Reference   string     `json:"reference"`
	GatewayRef  string     `json:"gateway_ref,omitempty"`
	Amount      int64      `json:"amount"`
	Tax         int64      `json:"tax"`
	TotalAmount int64      `json:"total_amount"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Channel     string     `json:"channel,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	Items       []LineItem `json:"items"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var (
	ErrNotFound   = errors.New("payment not found")
	ErrValidation = errors.New("invalid checkout request")
	ErrGateway    = errors.New("payment gateway error")
)

// vatRate is 7.5%, expressed as a ratio over integer amounts.
const (
	vatNumerator   = 75
	vatDenominator = 1000
)

// ComputeTax returns VAT on the subtotal, rounded half up on the
// integer amount.
func ComputeTax(subtotal int64) int64 {
	return (subtotal*vatNumerator + vatDenominator/2) / vatDenominator
}
