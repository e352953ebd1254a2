// internal/enrollment/service.go
package enrollment

import (
	"context"

	"github.com/google/uuid"
)

// EnrollRequest is the direct (no-payment) enrollment input.
type EnrollRequest struct {
	ProgramID uuid.UUID
	ChildName string
	ChildAge  int
}

// Notifier receives best-effort enrollment confirmations. Failures are
// the notifier's own problem; the service never waits on delivery.
type Notifier interface {
	EnrollmentConfirmed(userID uuid.UUID, childName, programName, schedule string)
}

// Service defines the interface for the enrollment service.
type Service interface {
	// Enroll claims a spot synchronously and creates the enrollment.
	// The claimed spot is released again if the duplicate guard fires.
	Enroll(ctx context.Context, userID uuid.UUID, req EnrollRequest) (*Enrollment, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Enrollment, error)
}
