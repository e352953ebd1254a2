// internal/enquiry/memory.go
package enquiry

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu        sync.Mutex
	enquiries []*Enquiry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Create(_ context.Context, e *Enquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	cp.Status = "new"
	cp.CreatedAt = time.Now().UTC()
	s.enquiries = append(s.enquiries, &cp)
	return nil
}

// All returns the stored enquiries, for tests.
func (s *MemoryStore) All() []*Enquiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Enquiry, len(s.enquiries))
	copy(out, s.enquiries)
	return out
}
