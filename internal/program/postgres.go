// internal/program/postgres.go
package program

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresStore implements Store over Postgres. The conditional UPDATE
// in Reserve is the atomicity boundary: Postgres serializes the row
// update, so min(N, K) concurrent reservers win for K remaining slots
// even across multiple service instances.
type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("skillpadi/program"),
	}
}

func (s *PostgresStore) Create(ctx context.Context, p *Program) error {
	query := `
		INSERT INTO programs (id, name, schedule, location, price_per_session, sessions, spots_total, spots_taken, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, TRUE)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Schedule, p.Location, p.PricePerSession, p.Sessions, p.SpotsTotal)
	if err != nil {
		return fmt.Errorf("insert program: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Program, error) {
	query := `
		SELECT id, name, schedule, location, price_per_session, sessions, spots_total, spots_taken, is_active, created_at, updated_at
		FROM programs
		WHERE id = $1
	`
	p := &Program{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Schedule, &p.Location, &p.PricePerSession,
		&p.Sessions, &p.SpotsTotal, &p.SpotsTaken, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get program: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) List(ctx context.Context, activeOnly bool) ([]*Program, error) {
	query := `
		SELECT id, name, schedule, location, price_per_session, sessions, spots_total, spots_taken, is_active, created_at, updated_at
		FROM programs
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at DESC LIMIT 100`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	var programs []*Program
	for rows.Next() {
		p := &Program{}
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Schedule, &p.Location, &p.PricePerSession,
			&p.Sessions, &p.SpotsTotal, &p.SpotsTaken, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

func (s *PostgresStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE programs SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("deactivate program: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate program: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Reserve(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "program.reserve",
		trace.WithAttributes(attribute.String("program.id", id.String())),
	)
	defer span.End()

	result, err := s.db.ExecContext(ctx, `
		UPDATE programs
		SET spots_taken = spots_taken + 1, updated_at = NOW()
		WHERE id = $1 AND is_active AND spots_taken < spots_total
	`, id)
	if err != nil {
		return false, fmt.Errorf("reserve spot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("reserve spot: %w", err)
	}
	span.SetAttributes(attribute.Bool("reserve.won", affected == 1))
	return affected == 1, nil
}

func (s *PostgresStore) Release(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "program.release",
		trace.WithAttributes(attribute.String("program.id", id.String())),
	)
	defer span.End()

	_, err := s.db.ExecContext(ctx, `
		UPDATE programs
		SET spots_taken = spots_taken - 1, updated_at = NOW()
		WHERE id = $1 AND spots_taken > 0
	`, id)
	if err != nil {
		return fmt.Errorf("release spot: %w", err)
	}
	return nil
}
