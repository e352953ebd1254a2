// internal/program/service_test.go
package program

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestProgram(t *testing.T, svc Service, spots int) *Program {
	t.Helper()
	p, err := svc.Create(context.Background(), &Program{
		Name:       "Saturday Coding Club",
		Schedule:   "Saturdays 10am",
		SpotsTotal: spots,
	})
	require.NoError(t, err)
	return p
}

func TestReserveNeverOversells(t *testing.T) {
	const spots = 5
	const contenders = 50

	svc := NewService(NewMemoryStore())
	p := newTestProgram(t, svc, spots)

	var wg sync.WaitGroup
	results := make(chan error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Reserve(context.Background(), p.ID)
		}()
	}
	wg.Wait()
	close(results)

	var won, full int
	for err := range results {
		switch {
		case err == nil:
			won++
		case err == ErrFull:
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	require.Equal(t, spots, won)
	require.Equal(t, contenders-spots, full)

	final, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, spots, final.SpotsTaken)
	require.True(t, final.IsFull())
}

func TestReserveUnknownProgram(t *testing.T) {
	svc := NewService(NewMemoryStore())
	err := svc.Reserve(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}

func TestReserveInactiveProgram(t *testing.T) {
	svc := NewService(NewMemoryStore())
	p := newTestProgram(t, svc, 3)
	require.NoError(t, svc.Deactivate(context.Background(), p.ID))

	err := svc.Reserve(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrInactive)
}

func TestReleaseCompensatesReserve(t *testing.T) {
	svc := NewService(NewMemoryStore())
	p := newTestProgram(t, svc, 1)

	require.NoError(t, svc.Reserve(context.Background(), p.ID))
	require.ErrorIs(t, svc.Reserve(context.Background(), p.ID), ErrFull)

	require.NoError(t, svc.Release(context.Background(), p.ID))
	require.NoError(t, svc.Reserve(context.Background(), p.ID))
}

func TestReleaseFloorsAtZero(t *testing.T) {
	svc := NewService(NewMemoryStore())
	p := newTestProgram(t, svc, 2)

	// Release without a prior reservation must not push the counter
	// negative and must not create phantom capacity.
	require.NoError(t, svc.Release(context.Background(), p.ID))
	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.SpotsTaken)
	require.Equal(t, 2, got.SpotsRemaining())
}
