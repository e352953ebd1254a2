// Package fulfillment materializes the entitlements of a settled
// payment: enrollments claim capacity, memberships flip the member
// flag, product items become an order. Every step is idempotent so a
// replayed settlement cannot double-grant anything.
package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"skillpadi/internal/audit"
	"skillpadi/internal/enrollment"
	"skillpadi/internal/payment"
	"skillpadi/internal/program"
	"skillpadi/internal/shop"
	"skillpadi/internal/users"
)

// Notifier delivers the enrollment confirmation once a spot is claimed.
type Notifier interface {
	EnrollmentConfirmed(userID uuid.UUID, childName, programName, schedule string)
}

// Materializer walks a settled payment's line items and grants each
// one. A failed item is recorded and skipped; the remaining items still
// materialize.
type Materializer struct {
	programs    program.Service
	enrollments enrollment.Store
	members     users.Store
	orders      shop.Store
	recorder    audit.Recorder
	notifier    Notifier
	logger      *slog.Logger
}

func NewMaterializer(programs program.Service, enrollments enrollment.Store, members users.Store, orders shop.Store, recorder audit.Recorder, notifier Notifier, logger *slog.Logger) *Materializer {
	return &Materializer{
		programs:    programs,
		enrollments: enrollments,
		members:     members,
		orders:      orders,
		recorder:    recorder,
		notifier:    notifier,
		logger:      logger,
	}
}

func (m *Materializer) Fulfill(ctx context.Context, rec *payment.Record) error {
	var errs []error
	var products []payment.LineItem
	for _, item := range rec.Items {
		switch item.Type {
		case payment.ItemEnrollment:
			if err := m.enroll(ctx, rec, item); err != nil {
				errs = append(errs, fmt.Errorf("enrollment item: %w", err))
			}
		case payment.ItemMembership:
			if err := m.membership(ctx, rec); err != nil {
				errs = append(errs, fmt.Errorf("membership item: %w", err))
			}
		case payment.ItemProduct:
			products = append(products, item)
		}
	}
	if len(products) > 0 {
		if err := m.order(ctx, rec, products); err != nil {
			errs = append(errs, fmt.Errorf("product items: %w", err))
		}
	}
	return errors.Join(errs...)
}

// enroll claims one spot for the paid enrollment. Capacity or duplicate
// conflicts discovered here happened after the buyer paid, so they are
// logged to the audit trail for an operator instead of failing the
// settlement.
func (m *Materializer) enroll(ctx context.Context, rec *payment.Record, item payment.LineItem) error {
	err := m.programs.Reserve(ctx, item.ProgramID)
	switch {
	case errors.Is(err, program.ErrFull), errors.Is(err, program.ErrInactive):
		m.record(ctx, audit.KindCapacityExhausted, rec.Reference, map[string]any{
			"program_id": item.ProgramID.String(),
			"child_name": item.ChildName,
			"cause":      err.Error(),
		})
		m.logger.Warn("paid enrollment could not claim a spot",
			"reference", rec.Reference, "program_id", item.ProgramID, "cause", err)
		return nil
	case err != nil:
		return err
	}

	exists, err := m.enrollments.ExistsActive(ctx, rec.UserID, item.ProgramID, item.ChildName)
	if err != nil {
		m.release(ctx, item.ProgramID, rec.Reference)
		return err
	}
	if exists {
		// Paid twice for the same child and program; give the spot
		// back and flag the payment for a refund decision.
		m.release(ctx, item.ProgramID, rec.Reference)
		m.record(ctx, audit.KindDuplicateEnrollment, rec.Reference, map[string]any{
			"program_id": item.ProgramID.String(),
			"child_name": item.ChildName,
		})
		return nil
	}

	paymentID := rec.ID
	e := &enrollment.Enrollment{
		ID:        uuid.New(),
		UserID:    rec.UserID,
		ProgramID: item.ProgramID,
		ChildName: item.ChildName,
		ChildAge:  item.ChildAge,
		Status:    enrollment.StatusActive,
		PaymentID: &paymentID,
		StartDate: time.Now(),
	}
	if err := m.enrollments.Create(ctx, e); err != nil {
		m.release(ctx, item.ProgramID, rec.Reference)
		return err
	}

	if m.notifier != nil {
		if p, perr := m.programs.Get(ctx, item.ProgramID); perr == nil {
			m.notifier.EnrollmentConfirmed(rec.UserID, item.ChildName, p.Name, p.Schedule)
		}
	}
	return nil
}

func (m *Materializer) membership(ctx context.Context, rec *payment.Record) error {
	return m.members.SetMembership(ctx, rec.UserID, rec.Reference, time.Now())
}

func (m *Materializer) order(ctx context.Context, rec *payment.Record, items []payment.LineItem) error {
	exists, err := m.orders.ExistsForPayment(ctx, rec.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	orderItems := make([]shop.OrderItem, len(items))
	var subtotal int64
	for i, item := range items {
		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}
		orderItems[i] = shop.OrderItem{Name: item.Name, Price: item.Amount, Quantity: qty}
		subtotal += item.Amount
	}
	tax := payment.ComputeTax(subtotal)
	paymentID := rec.ID
	o := &shop.Order{
		ID:        uuid.New(),
		UserID:    rec.UserID,
		PaymentID: &paymentID,
		Reference: rec.Reference,
		Items:     orderItems,
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     subtotal + tax,
		Status:    "paid",
	}
	err = m.orders.Create(ctx, o)
	if errors.Is(err, shop.ErrDuplicateOrder) {
		return nil
	}
	return err
}

func (m *Materializer) release(ctx context.Context, programID uuid.UUID, reference string) {
	if err := m.programs.Release(ctx, programID); err != nil {
		m.logger.Error("release reserved spot",
			"program_id", programID, "reference", reference, "error", err)
	}
}

func (m *Materializer) record(ctx context.Context, kind, reference string, details map[string]any) {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Record(ctx, audit.Event{Kind: kind, Reference: reference, Details: details}); err != nil {
		m.logger.Error("record audit event", "kind", kind, "error", err)
	}
}
