// internal/program/implementation.go
package program

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// service implements the Service interface.
type service struct {
	store Store
}

// NewService creates a new program service instance.
func NewService(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, p *Program) (*Program, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("program name is required")
	}
	if p.SpotsTotal <= 0 {
		return nil, fmt.Errorf("spots_total must be positive")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := s.store.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.store.GetByID(ctx, p.ID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Program, error) {
	return s.store.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]*Program, error) {
	return s.store.List(ctx, activeOnly)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.store.Deactivate(ctx, id)
}

// Reserve claims a slot atomically, then classifies the loss with a
// follow-up read. The read is advisory only; the reservation decision
// was already made by the store's conditional update.
func (s *service) Reserve(ctx context.Context, id uuid.UUID) error {
	won, err := s.store.Reserve(ctx, id)
	if err != nil {
		return fmt.Errorf("reserve: %w", err)
	}
	if won {
		return nil
	}

	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsActive {
		return ErrInactive
	}
	return ErrFull
}

func (s *service) Release(ctx context.Context, id uuid.UUID) error {
	return s.store.Release(ctx, id)
}
