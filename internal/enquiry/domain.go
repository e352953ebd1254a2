// internal/enquiry/domain.go
package enquiry

import (
	"time"

	"github.com/google/uuid"
)

const maxMessageLength = 500

// Enquiry is a public pre-sales question about a program.
type Enquiry struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone,omitempty"`
	Message   string     `json:"message"`
	ProgramID *uuid.UUID `json:"program_id,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}
