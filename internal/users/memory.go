// internal/users/memory.go
package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]*User)}
}

func (s *MemoryStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) Upsert(_ context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if existing, ok := s.users[u.ID]; ok {
		existing.Email = u.Email
		existing.Name = u.Name
		existing.Phone = u.Phone
		existing.UpdatedAt = now
		return nil
	}
	cp := *u
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.users[u.ID] = &cp
	return nil
}

func (s *MemoryStore) SetMembership(_ context.Context, id uuid.UUID, reference string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.MembershipPaid {
		return nil
	}
	u.MembershipPaid = true
	u.MembershipDate = &at
	u.MembershipRef = reference
	u.UpdatedAt = time.Now().UTC()
	return nil
}
