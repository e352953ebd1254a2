// internal/shop/postgres.go
package shop

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, o *Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}
	query := `
		INSERT INTO orders (id, user_id, payment_id, reference, items, subtotal, tax, total, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		o.ID, o.UserID, o.PaymentID, o.Reference, itemsJSON,
		o.Subtotal, o.Tax, o.Total, o.Status)
	if err != nil {
		// The partial unique index on payment_id is the idempotency
		// backstop for concurrent materialization.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateOrder
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Order, error) {
	query := `
		SELECT id, user_id, payment_id, reference, items, subtotal, tax, total, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 50
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o := &Order{}
		var itemsJSON []byte
		var paymentID uuid.NullUUID
		if err := rows.Scan(
			&o.ID, &o.UserID, &paymentID, &o.Reference, &itemsJSON,
			&o.Subtotal, &o.Tax, &o.Total, &o.Status, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if paymentID.Valid {
			id := paymentID.UUID
			o.PaymentID = &id
		}
		if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
			return nil, fmt.Errorf("unmarshal order items: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (s *PostgresStore) ExistsForPayment(ctx context.Context, paymentID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE payment_id = $1)`, paymentID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check order for payment: %w", err)
	}
	return exists, nil
}
