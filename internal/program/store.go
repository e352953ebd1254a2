// internal/program/store.go
package program

import (
	"context"

	"github.com/google/uuid"
)

// Store persists programs and owns the capacity counters.
//
// Reserve and Release are the only writes allowed against spots_taken.
// Reserve must be a single conditional update; no implementation may
// read the counter and write it back in separate steps.
type Store interface {
	Create(ctx context.Context, p *Program) error
	GetByID(ctx context.Context, id uuid.UUID) (*Program, error)
	List(ctx context.Context, activeOnly bool) ([]*Program, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Reserve atomically increments spots_taken when the program is
	// active and has a free slot. The boolean reports whether this
	// caller won a slot.
	Reserve(ctx context.Context, id uuid.UUID) (bool, error)

	// Release decrements spots_taken, flooring at zero.
	Release(ctx context.Context, id uuid.UUID) error
}
