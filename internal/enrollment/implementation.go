// internal/enrollment/implementation.go
package enrollment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillpadi/internal/program"
)

// service implements the Service interface.
type service struct {
	store    Store
	programs program.Service
	notifier Notifier
	logger   *slog.Logger
}

// NewService creates a new enrollment service instance. notifier may
// be nil.
func NewService(store Store, programs program.Service, notifier Notifier, logger *slog.Logger) Service {
	return &service{store: store, programs: programs, notifier: notifier, logger: logger}
}

// Enroll reserves first and validates the duplicate guard second: the
// reservation is the atomic step, so on a duplicate we compensate by
// releasing the spot we just took.
func (s *service) Enroll(ctx context.Context, userID uuid.UUID, req EnrollRequest) (*Enrollment, error) {
	req.ChildName = strings.TrimSpace(req.ChildName)
	if err := validateEnrollRequest(req); err != nil {
		return nil, err
	}

	if err := s.programs.Reserve(ctx, req.ProgramID); err != nil {
		return nil, err
	}

	duplicate, err := s.store.ExistsActive(ctx, userID, req.ProgramID, req.ChildName)
	if err != nil {
		s.compensate(ctx, req.ProgramID)
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if duplicate {
		s.compensate(ctx, req.ProgramID)
		return nil, ErrDuplicate
	}

	e := &Enrollment{
		ID:        uuid.New(),
		UserID:    userID,
		ProgramID: req.ProgramID,
		ChildName: req.ChildName,
		ChildAge:  req.ChildAge,
		Status:    StatusActive,
		StartDate: time.Now().UTC(),
	}
	if err := s.store.Create(ctx, e); err != nil {
		s.compensate(ctx, req.ProgramID)
		return nil, fmt.Errorf("create enrollment: %w", err)
	}

	if s.notifier != nil {
		if p, err := s.programs.Get(ctx, req.ProgramID); err == nil {
			s.notifier.EnrollmentConfirmed(userID, e.ChildName, p.Name, p.Schedule)
		}
	}

	return e, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Enrollment, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *service) compensate(ctx context.Context, programID uuid.UUID) {
	if err := s.programs.Release(ctx, programID); err != nil {
		s.logger.Error("failed to release spot after enrollment conflict",
			"program_id", programID, "error", err)
	}
}

func validateEnrollRequest(req EnrollRequest) error {
	if req.ProgramID == uuid.Nil {
		return fmt.Errorf("%w: program_id is required", ErrValidation)
	}
	if req.ChildName == "" {
		return fmt.Errorf("%w: child_name is required", ErrValidation)
	}
	if len(req.ChildName) > maxNameLength {
		return fmt.Errorf("%w: child_name is too long", ErrValidation)
	}
	if req.ChildAge != 0 && (req.ChildAge < minChildAge || req.ChildAge > maxChildAge) {
		return fmt.Errorf("%w: child_age must be between %d and %d", ErrValidation, minChildAge, maxChildAge)
	}
	return nil
}
