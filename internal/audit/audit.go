// Package audit is an append-only operational event log. Settlement
// anomalies land here instead of failing the payment that triggered
// them: a spot that sold out between payment and materialization is an
// operator problem, not a buyer problem.
package audit

import (
	"context"
	"time"
)

// Event kinds recorded by the core pipeline.
const (
	KindCapacityExhausted   = "settlement.capacity_exhausted"
	KindDuplicateEnrollment = "settlement.duplicate_enrollment"
	KindWebhookBadSignature = "webhook.bad_signature"
	KindWebhookBadPayload   = "webhook.bad_payload"
)

// Event is one operational anomaly or notable transition.
type Event struct {
	ID        int64          `json:"id"`
	Kind      string         `json:"kind"`
	Reference string         `json:"reference,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Recorder appends events. Implementations must tolerate concurrent
// callers; recording failures are logged by callers, never propagated
// into the settlement path.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}
