// internal/payment/postgres.go
package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PostgresStore struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:     db,
		tracer: otel.Tracer("skillpadi/payment"),
	}
}

const recordColumns = `id, user_id, reference, gateway_ref, amount, tax, total_amount,
	description, status, channel, paid_at, checkout_details, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, rec *Record) error {
	ctx, span := s.tracer.Start(ctx, "payment.create")
	defer span.End()
	span.SetAttributes(attribute.String("payment.reference", rec.Reference))

	details, err := json.Marshal(rec.Items)
	if err != nil {
		return fmt.Errorf("marshal checkout details: %w", err)
	}
	query := `
		INSERT INTO payments (id, user_id, reference, amount, tax, total_amount,
			description, status, checkout_details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err = s.db.QueryRowContext(ctx, query,
		rec.ID, rec.UserID, rec.Reference, rec.Amount, rec.Tax, rec.TotalAmount,
		rec.Description, rec.Status, details,
	).Scan(&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByReference(ctx context.Context, reference string) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "payment.get_by_reference")
	defer span.End()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM payments WHERE reference = $1`, reference)
	return scanRecord(row)
}

// MarkSucceeded races every settlement trigger through one conditional
// UPDATE; the RETURNING row decides the winner.
func (s *PostgresStore) MarkSucceeded(ctx context.Context, reference string, meta SettledMeta) (*Record, error) {
	ctx, span := s.tracer.Start(ctx, "payment.mark_succeeded")
	defer span.End()
	span.SetAttributes(attribute.String("payment.reference", reference))

	query := `
		UPDATE payments
		SET status = 'success', gateway_ref = $2, channel = $3, paid_at = $4,
			updated_at = now()
		WHERE reference = $1 AND status = 'pending'
		RETURNING ` + recordColumns
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query,
		reference, meta.GatewayRef, meta.Channel, meta.PaidAt))
	if err == nil {
		span.SetAttributes(attribute.Bool("settle.won", true))
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// No pending row: either already settled or an unknown reference.
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE reference = $1)`, reference,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check payment existence: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}
	span.SetAttributes(attribute.Bool("settle.won", false))
	return nil, nil
}

func (s *PostgresStore) MarkFailed(ctx context.Context, reference string) error {
	ctx, span := s.tracer.Start(ctx, "payment.mark_failed")
	defer span.End()

	_, err := s.db.ExecContext(ctx, `
		UPDATE payments SET status = 'failed', updated_at = now()
		WHERE reference = $1 AND status = 'pending'`, reference)
	if err != nil {
		return fmt.Errorf("mark payment failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) MarkRefunded(ctx context.Context, reference string) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "payment.mark_refunded")
	defer span.End()

	result, err := s.db.ExecContext(ctx, `
		UPDATE payments SET status = 'refunded', updated_at = now()
		WHERE reference = $1 AND status = 'success'`, reference)
	if err != nil {
		return false, fmt.Errorf("mark payment refunded: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		gatewayRef sql.NullString
		channel    sql.NullString
		paidAt     sql.NullTime
		details    []byte
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Reference, &gatewayRef,
		&rec.Amount, &rec.Tax, &rec.TotalAmount, &rec.Description, &rec.Status,
		&channel, &paidAt, &details, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	rec.GatewayRef = gatewayRef.String
	rec.Channel = channel.String
	if paidAt.Valid {
		t := paidAt.Time
		rec.PaidAt = &t
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &rec.Items); err != nil {
			return nil, fmt.Errorf("decode checkout details: %w", err)
		}
	}
	return &rec, nil
}
