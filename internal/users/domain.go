// internal/users/domain.go
package users

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is the stored profile behind an authenticated principal.
// Credentials live with the external identity provider; this record
// only carries what entitlements need, chiefly the membership flag.
type User struct {
	ID             uuid.UUID  `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	Phone          string     `json:"phone,omitempty"`
	Role           string     `json:"role"`
	MembershipPaid bool       `json:"membership_paid"`
	MembershipDate *time.Time `json:"membership_date,omitempty"`
	MembershipRef  string     `json:"membership_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

var ErrNotFound = errors.New("user not found")
