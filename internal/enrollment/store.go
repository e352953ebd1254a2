// internal/enrollment/store.go
package enrollment

import (
	"context"

	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, e *Enrollment) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Enrollment, error)

	// ExistsActive reports whether (user, program, child) already holds
	// a pending or active enrollment. This is the duplicate-booking guard.
	ExistsActive(ctx context.Context, userID, programID uuid.UUID, childName string) (bool, error)
}
