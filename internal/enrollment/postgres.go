// internal/enrollment/postgres.go
package enrollment

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, e *Enrollment) error {
	query := `
		INSERT INTO enrollments (id, user_id, program_id, child_name, child_age, status, payment_id, start_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.UserID, e.ProgramID, e.ChildName, e.ChildAge,
		e.Status, e.PaymentID, e.StartDate)
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Enrollment, error) {
	query := `
		SELECT id, user_id, program_id, child_name, COALESCE(child_age, 0), status, payment_id, COALESCE(start_date, created_at), created_at, updated_at
		FROM enrollments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 100
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*Enrollment
	for rows.Next() {
		e := &Enrollment{}
		var paymentID uuid.NullUUID
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.ProgramID, &e.ChildName, &e.ChildAge,
			&e.Status, &paymentID, &e.StartDate, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		if paymentID.Valid {
			id := paymentID.UUID
			e.PaymentID = &id
		}
		enrollments = append(enrollments, e)
	}
	return enrollments, rows.Err()
}

func (s *PostgresStore) ExistsActive(ctx context.Context, userID, programID uuid.UUID, childName string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM enrollments
			WHERE user_id = $1 AND program_id = $2 AND child_name = $3
			  AND status IN ('pending', 'active')
		)
	`, userID, programID, childName).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check duplicate enrollment: %w", err)
	}
	return exists, nil
}
