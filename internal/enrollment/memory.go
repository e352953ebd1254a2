// internal/enrollment/memory.go
package enrollment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryStore struct {
	mu          sync.Mutex
	enrollments []*Enrollment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, e *Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.enrollments = append(s.enrollments, &cp)
	return nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Enrollment
	for _, e := range s.enrollments {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemoryStore) ExistsActive(_ context.Context, userID, programID uuid.UUID, childName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.enrollments {
		if e.UserID == userID && e.ProgramID == programID && e.ChildName == childName &&
			(e.Status == StatusPending || e.Status == StatusActive) {
			return true, nil
		}
	}
	return false, nil
}
