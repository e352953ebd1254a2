// internal/payment/service.go
package payment

import (
	"context"

	"github.com/google/uuid"

	"skillpadi/internal/paystack"
)

// Gateway is the slice of the payment provider the service needs.
// *paystack.Client satisfies it.
type Gateway interface {
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.Authorization, error)
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}

// Fulfiller materializes the entitlements of a settled payment. It runs
// at most once per record; a failure is logged, never propagated back
// to the settlement trigger.
type Fulfiller interface {
	Fulfill(ctx context.Context, rec *Record) error
}

// Notifier delivers fire-and-forget confirmations.
type Notifier interface {
	PaymentReceived(userID uuid.UUID, total int64, description string)
}

// CheckoutRequest is a cart plus the entitlement metadata attached to
// any enrollment item in it.
type CheckoutRequest struct {
	Items     []LineItem
	ChildName string
	ChildAge  int
	ProgramID uuid.UUID
}

// CheckoutSession is what the buyer's client needs to complete payment.
type CheckoutSession struct {
	AuthorizationURL string    `json:"authorization_url"`
	AccessCode       string    `json:"access_code"`
	Reference        string    `json:"reference"`
	PaymentID        uuid.UUID `json:"payment_id"`
	Amount           int64     `json:"amount"`
	Tax              int64     `json:"tax"`
	TotalAmount      int64     `json:"total_amount"`
}

// VerifyResult reports the settlement outcome of a verify poll.
type VerifyResult struct {
	Status  string  `json:"status"`
	Payment *Record `json:"payment,omitempty"`
}

const (
	// VerifyAlreadyProcessed is returned when the record settled before
	// this poll; callers treat it the same as success.
	VerifyAlreadyProcessed = "already_processed"
	VerifySuccess          = "success"
)

// WebhookEvent is the decoded gateway webhook payload.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	ID        int64  `json:"id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Channel   string `json:"channel"`
	PaidAt    string `json:"paid_at"`
}

type Service interface {
	// Checkout records a pending settlement and opens a hosted payment
	// session for it.
	Checkout(ctx context.Context, userID uuid.UUID, email string, req CheckoutRequest) (*CheckoutSession, error)

	// Verify polls the gateway for the reference and settles on
	// success. Safe to call any number of times.
	Verify(ctx context.Context, reference string) (*VerifyResult, error)

	// HandleWebhookEvent settles from a gateway push. Ignores anything
	// but charge.success.
	HandleWebhookEvent(ctx context.Context, event WebhookEvent) error

	GetByReference(ctx context.Context, reference string) (*Record, error)
	Refund(ctx context.Context, reference string) error
}
