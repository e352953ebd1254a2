// internal/program/domain.go
package program

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Program is a finite-capacity bookable offering. spots_taken is only
// ever mutated through the ledger's Reserve/Release primitives.
type Program struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Schedule        string    `json:"schedule,omitempty"`
	Location        string    `json:"location,omitempty"`
	PricePerSession int64     `json:"price_per_session"`
	Sessions        int       `json:"sessions"`
	SpotsTotal      int       `json:"spots_total"`
	SpotsTaken      int       `json:"spots_taken"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// SpotsRemaining is the number of slots still bookable.
func (p *Program) SpotsRemaining() int {
	return p.SpotsTotal - p.SpotsTaken
}

// IsFull reports whether every slot is taken.
func (p *Program) IsFull() bool {
	return p.SpotsTaken >= p.SpotsTotal
}

var (
	ErrNotFound = errors.New("program not found")
	ErrInactive = errors.New("program is no longer active")
	ErrFull     = errors.New("program is full")
)
