package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PostgresRecorder appends events to the audit_events table.
type PostgresRecorder struct {
	db     *sql.DB
	tracer trace.Tracer
}

func NewPostgresRecorder(db *sql.DB) *PostgresRecorder {
	return &PostgresRecorder{
		db:     db,
		tracer: otel.Tracer("skillpadi/audit"),
	}
}

func (r *PostgresRecorder) Record(ctx context.Context, event Event) error {
	ctx, span := r.tracer.Start(ctx, "audit.record",
		trace.WithAttributes(
			attribute.String("event.kind", event.Kind),
			attribute.String("event.reference", event.Reference),
		),
	)
	defer span.End()

	detailsJSON, err := json.Marshal(event.Details)
	if err != nil {
		return fmt.Errorf("marshal event details: %w", err)
	}
	if event.Details == nil {
		detailsJSON = []byte(`{}`)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_events (kind, reference, details)
		VALUES ($1, $2, $3)
	`, event.Kind, event.Reference, detailsJSON)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}
