// internal/enrollment/domain.go
package enrollment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status values an enrollment moves through. Only pending and active
// count toward the duplicate-booking guard.
const (
	StatusPending   = "pending"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusPaused    = "paused"
)

// Enrollment is a child's claimed spot in a program, linked back to the
// payment that produced it (nil for the direct/free path).
type Enrollment struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	ProgramID uuid.UUID  `json:"program_id"`
	ChildName string     `json:"child_name"`
	ChildAge  int        `json:"child_age,omitempty"`
	Status    string     `json:"status"`
	PaymentID *uuid.UUID `json:"payment_id,omitempty"`
	StartDate time.Time  `json:"start_date"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

var (
	ErrDuplicate  = errors.New("child is already enrolled in this program")
	ErrValidation = errors.New("invalid enrollment request")
)

const (
	minChildAge   = 2
	maxChildAge   = 18
	maxNameLength = 100
)
