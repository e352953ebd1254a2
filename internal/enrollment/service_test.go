// internal/enrollment/service_test.go
package enrollment

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"skillpadi/internal/program"
)

type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []string
}

func (n *recordingNotifier) EnrollmentConfirmed(_ uuid.UUID, childName, programName, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, childName+"/"+programName)
}

func setup(t *testing.T, spots int) (Service, program.Service, *program.Program, *recordingNotifier) {
	t.Helper()
	programs := program.NewService(program.NewMemoryStore())
	p, err := programs.Create(context.Background(), &program.Program{
		Name:       "Robotics Foundations",
		Schedule:   "Sundays 2pm",
		SpotsTotal: spots,
	})
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := NewService(NewMemoryStore(), programs, notifier, slog.Default())
	return svc, programs, p, notifier
}

func TestEnrollClaimsSpotAndNotifies(t *testing.T) {
	svc, programs, p, notifier := setup(t, 5)
	userID := uuid.New()

	e, err := svc.Enroll(context.Background(), userID, EnrollRequest{
		ProgramID: p.ID,
		ChildName: "Ada",
		ChildAge:  9,
	})
	require.NoError(t, err)
	require.Equal(t, StatusActive, e.Status)
	require.Nil(t, e.PaymentID)

	got, err := programs.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.SpotsTaken)
	require.Equal(t, []string{"Ada/Robotics Foundations"}, notifier.confirmed)
}

func TestEnrollDuplicateReleasesSpot(t *testing.T) {
	svc, programs, p, _ := setup(t, 5)
	userID := uuid.New()

	req := EnrollRequest{ProgramID: p.ID, ChildName: "Ada", ChildAge: 9}
	_, err := svc.Enroll(context.Background(), userID, req)
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), userID, req)
	require.ErrorIs(t, err, ErrDuplicate)

	// The compensating release keeps the counter where it was.
	got, err := programs.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.SpotsTaken)
}

func TestEnrollSameChildNameDifferentUser(t *testing.T) {
	svc, _, p, _ := setup(t, 5)

	req := EnrollRequest{ProgramID: p.ID, ChildName: "Ada", ChildAge: 9}
	_, err := svc.Enroll(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	_, err = svc.Enroll(context.Background(), uuid.New(), req)
	require.NoError(t, err)
}

func TestEnrollFullProgram(t *testing.T) {
	svc, _, p, _ := setup(t, 1)

	_, err := svc.Enroll(context.Background(), uuid.New(), EnrollRequest{
		ProgramID: p.ID, ChildName: "Ada",
	})
	require.NoError(t, err)

	_, err = svc.Enroll(context.Background(), uuid.New(), EnrollRequest{
		ProgramID: p.ID, ChildName: "Grace",
	})
	require.ErrorIs(t, err, program.ErrFull)
}

func TestEnrollLastSpotRace(t *testing.T) {
	svc, programs, p, _ := setup(t, 1)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for _, name := range []string{"Ada", "Grace"} {
		wg.Add(1)
		go func(childName string) {
			defer wg.Done()
			_, err := svc.Enroll(context.Background(), uuid.New(), EnrollRequest{
				ProgramID: p.ID, ChildName: childName,
			})
			results <- err
		}(name)
	}
	wg.Wait()
	close(results)

	var won, full int
	for err := range results {
		switch {
		case err == nil:
			won++
		case err == program.ErrFull:
			full++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, won)
	require.Equal(t, 1, full)

	got, err := programs.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.SpotsTaken)
}

func TestEnrollValidation(t *testing.T) {
	svc, _, p, _ := setup(t, 5)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.Enroll(ctx, userID, EnrollRequest{ChildName: "Ada"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Enroll(ctx, userID, EnrollRequest{ProgramID: p.ID, ChildName: "   "})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Enroll(ctx, userID, EnrollRequest{ProgramID: p.ID, ChildName: "Ada", ChildAge: 42})
	require.ErrorIs(t, err, ErrValidation)
}

func TestEnrollInactiveProgram(t *testing.T) {
	svc, programs, p, _ := setup(t, 5)
	require.NoError(t, programs.Deactivate(context.Background(), p.ID))

	_, err := svc.Enroll(context.Background(), uuid.New(), EnrollRequest{
		ProgramID: p.ID, ChildName: "Ada",
	})
	require.ErrorIs(t, err, program.ErrInactive)
}
