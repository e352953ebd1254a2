// internal/program/memory.go
package program

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and the seed tool.
// The mutex lives inside each primitive, so Reserve keeps the same
// check-and-increment atomicity the SQL implementation has.
type MemoryStore struct {
	mu       sync.Mutex
	programs map[uuid.UUID]*Program
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{programs: make(map[uuid.UUID]*Program)}
}

func (s *MemoryStore) Create(_ context.Context, p *Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	cp := *p
	cp.SpotsTaken = 0
	cp.IsActive = true
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.programs[p.ID] = &cp
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) List(_ context.Context, activeOnly bool) ([]*Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Program
	for _, p := range s.programs {
		if activeOnly && !p.IsActive {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Deactivate(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[id]
	if !ok {
		return ErrNotFound
	}
	p.IsActive = false
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Reserve(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[id]
	if !ok || !p.IsActive || p.SpotsTaken >= p.SpotsTotal {
		return false, nil
	}
	p.SpotsTaken++
	p.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *MemoryStore) Release(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.programs[id]
	if !ok {
		return nil
	}
	if p.SpotsTaken > 0 {
		p.SpotsTaken--
		p.UpdatedAt = time.Now().UTC()
	}
	return nil
}
