// internal/enquiry/postgres.go
package enquiry

import (
	"context"
	"database/sql"
	"fmt"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, e *Enquiry) error {
	query := `
		INSERT INTO enquiries (id, name, phone, message, program_id, status)
		VALUES ($1, $2, $3, $4, $5, 'new')
	`
	_, err := s.db.ExecContext(ctx, query, e.ID, e.Name, e.Phone, e.Message, e.ProgramID)
	if err != nil {
		return fmt.Errorf("insert enquiry: %w", err)
	}
	return nil
}
