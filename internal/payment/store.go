// internal/payment/store.go
package payment

import (
	"context"
	"time"
)

// SettledMeta is what the gateway reported about the settled charge.
type SettledMeta struct {
	GatewayRef string
	Channel    string
	PaidAt     time.Time
}

// Store persists settlement records. MarkSucceeded is the linchpin of
// exactly-once settlement: it must be a single conditional transition,
// and every settlement trigger goes through it.
type Store interface {
	Create(ctx context.Context, rec *Record) error
	GetByReference(ctx context.Context, reference string) (*Record, error)

	// MarkSucceeded sets status to success only if it is currently
	// pending. It returns the updated record when this caller won the
	// transition, nil when another caller already settled it, and
	// ErrNotFound for an unknown reference.
	MarkSucceeded(ctx context.Context, reference string, meta SettledMeta) (*Record, error)

	// MarkFailed transitions a pending record to failed.
	MarkFailed(ctx context.Context, reference string) error

	// MarkRefunded transitions success to refunded (administrator
	// path). The boolean reports whether the transition occurred.
	MarkRefunded(ctx context.Context, reference string) (bool, error)
}
