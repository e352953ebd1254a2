// internal/program/service.go
package program

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the program catalog and its
// capacity ledger.
type Service interface {
	Create(ctx context.Context, p *Program) (*Program, error)
	Get(ctx context.Context, id uuid.UUID) (*Program, error)
	List(ctx context.Context, activeOnly bool) ([]*Program, error)
	Deactivate(ctx context.Context, id uuid.UUID) error

	// Reserve claims one slot. On failure the returned error
	// distinguishes ErrNotFound, ErrInactive and ErrFull; the claim
	// decision itself is made atomically in the store.
	Reserve(ctx context.Context, id uuid.UUID) error

	// Release returns a slot claimed by Reserve, used to compensate a
	// reservation that could not be completed downstream.
	Release(ctx context.Context, id uuid.UUID) error
}
