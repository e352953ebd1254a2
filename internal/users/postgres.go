// internal/users/postgres.go
package users

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `
		SELECT id, email, name, phone, role, membership_paid, membership_date, membership_ref, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &User{}
	var membershipDate sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.Name, &u.Phone, &u.Role,
		&u.MembershipPaid, &membershipDate, &u.MembershipRef,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if membershipDate.Valid {
		u.MembershipDate = &membershipDate.Time
	}
	return u, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, u *User) error {
	query := `
		INSERT INTO users (id, email, name, phone, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    phone = EXCLUDED.phone,
		    updated_at = NOW()
	`
	_, err := s.db.ExecContext(ctx, query, u.ID, u.Email, u.Name, u.Phone, u.Role)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) SetMembership(ctx context.Context, id uuid.UUID, reference string, at time.Time) error {
	query := `
		UPDATE users
		SET membership_paid = TRUE, membership_date = $2, membership_ref = $3, updated_at = NOW()
		WHERE id = $1 AND NOT membership_paid
	`
	_, err := s.db.ExecContext(ctx, query, id, at, reference)
	if err != nil {
		return fmt.Errorf("set membership: %w", err)
	}
	return nil
}
