// internal/payment/memory.go
package payment

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps settlement records in a map. The mutex makes
// MarkSucceeded the same single winner-takes-all transition as the
// conditional UPDATE in Postgres.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Create(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	clone := *rec
	s.records[rec.Reference] = &clone
	return nil
}

func (s *MemoryStore) GetByReference(_ context.Context, reference string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[reference]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) MarkSucceeded(_ context.Context, reference string, meta SettledMeta) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[reference]
	if !ok {
		return nil, ErrNotFound
	}
	if rec.Status != StatusPending {
		return nil, nil
	}
	rec.Status = StatusSuccess
	rec.GatewayRef = meta.GatewayRef
	rec.Channel = meta.Channel
	paidAt := meta.PaidAt
	rec.PaidAt = &paidAt
	rec.UpdatedAt = time.Now()
	clone := *rec
	return &clone, nil
}

func (s *MemoryStore) MarkFailed(_ context.Context, reference string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[reference]
	if !ok {
		return nil
	}
	if rec.Status == StatusPending {
		rec.Status = StatusFailed
		rec.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) MarkRefunded(_ context.Context, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[reference]
	if !ok || rec.Status != StatusSuccess {
		return false, nil
	}
	rec.Status = StatusRefunded
	rec.UpdatedAt = time.Now()
	return true, nil
}
