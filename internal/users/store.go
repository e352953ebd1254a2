// internal/users/store.go
package users

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Upsert creates or refreshes the profile row for a principal.
	Upsert(ctx context.Context, u *User) error

	// SetMembership marks the membership paid with the settlement
	// reference that bought it. Setting an already-set flag is a no-op
	// by construction, which is what makes membership materialization
	// idempotent.
	SetMembership(ctx context.Context, id uuid.UUID, reference string, at time.Time) error
}
