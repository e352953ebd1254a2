// internal/payment/implementation.go
package payment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"skillpadi/internal/paystack"
	"skillpadi/internal/program"
)

const referencePrefix = "CHK"

type service struct {
	store     Store
	programs  program.Service
	gateway   Gateway
	fulfiller Fulfiller
	notifier  Notifier
	appURL    string
	logger    *slog.Logger
}

func NewService(store Store, programs program.Service, gateway Gateway, fulfiller Fulfiller, notifier Notifier, appURL string, logger *slog.Logger) Service {
	return &service{
		store:     store,
		programs:  programs,
		gateway:   gateway,
		fulfiller: fulfiller,
		notifier:  notifier,
		appURL:    appURL,
		logger:    logger,
	}
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, email string, req CheckoutRequest) (*CheckoutSession, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrValidation)
	}

	items := make([]LineItem, len(req.Items))
	var subtotal int64
	var labels []string
	var enrollmentProgram uuid.UUID
	for idx, item := range req.Items {
		if item.Type == ItemEnrollment {
			// Entitlement metadata travels with the item so the
			// materializer never needs the original request.
			if item.ProgramID == uuid.Nil {
				item.ProgramID = req.ProgramID
			}
			if item.ChildName == "" {
				item.ChildName = req.ChildName
			}
			if item.ChildAge == 0 {
				item.ChildAge = req.ChildAge
			}
			enrollmentProgram = item.ProgramID
		}
		if err := item.Validate(); err != nil {
			return nil, err
		}
		subtotal += item.Amount
		if label := itemLabel(item); label != "" {
			labels = append(labels, label)
		}
		items[idx] = item
	}

	// Advisory capacity check. The real claim happens at settlement,
	// but telling the buyer the program is full before they pay beats
	// telling them after.
	if enrollmentProgram != uuid.Nil {
		p, err := s.programs.Get(ctx, enrollmentProgram)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, program.ErrInactive
		}
		if p.IsFull() {
			return nil, program.ErrFull
		}
	}

	tax := ComputeTax(subtotal)
	rec := &Record{
		ID:          uuid.New(),
		UserID:      userID,
		Reference:   NewReference(referencePrefix),
		Amount:      subtotal,
		Tax:         tax,
		TotalAmount: subtotal + tax,
		Description: strings.Join(labels, ", "),
		Status:      StatusPending,
		Items:       items,
	}

	// The pending record goes down before the gateway call so a
	// webhook arriving mid-flight always finds something to settle.
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}

	auth, err := s.gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       email,
		AmountKobo:  rec.TotalAmount * 100,
		Reference:   rec.Reference,
		CallbackURL: s.appURL + "/dashboard/parent?payment=" + rec.Reference,
		Metadata: map[string]any{
			"user_id":    userID.String(),
			"payment_id": rec.ID.String(),
		},
	})
	if err != nil {
		if ferr := s.store.MarkFailed(ctx, rec.Reference); ferr != nil {
			s.logger.Error("mark payment failed after gateway error",
				"reference", rec.Reference, "error", ferr)
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return &CheckoutSession{
		AuthorizationURL: auth.AuthorizationURL,
		AccessCode:       auth.AccessCode,
		Reference:        rec.Reference,
		PaymentID:        rec.ID,
		Amount:           rec.Amount,
		Tax:              rec.Tax,
		TotalAmount:      rec.TotalAmount,
	}, nil
}

func (s *service) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	rec, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if rec.Status == StatusSuccess {
		return &VerifyResult{Status: VerifyAlreadyProcessed, Payment: rec}, nil
	}

	tx, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if tx.Status != "success" {
		return &VerifyResult{Status: tx.Status}, nil
	}

	if err := s.settle(ctx, reference, metaFromTransaction(tx)); err != nil {
		return nil, err
	}
	settled, err := s.store.GetByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return &VerifyResult{Status: VerifySuccess, Payment: settled}, nil
}

func (s *service) HandleWebhookEvent(ctx context.Context, event WebhookEvent) error {
	if event.Event != "charge.success" {
		return nil
	}
	if event.Data.Reference == "" {
		return fmt.Errorf("charge.success event without reference")
	}
	meta := SettledMeta{
		GatewayRef: fmt.Sprintf("%d", event.Data.ID),
		Channel:    event.Data.Channel,
		PaidAt:     parsePaidAt(event.Data.PaidAt),
	}
	return s.settle(ctx, event.Data.Reference, meta)
}

// settle is the single convergence point for both triggers. The store
// transition picks exactly one winner; that winner alone runs the
// materializer and the notification.
func (s *service) settle(ctx context.Context, reference string, meta SettledMeta) error {
	rec, err := s.store.MarkSucceeded(ctx, reference, meta)
	if err != nil {
		return err
	}
	if rec == nil {
		s.logger.Info("payment already settled", "reference", reference)
		return nil
	}

	s.logger.Info("payment settled",
		"reference", reference, "total", rec.TotalAmount, "channel", rec.Channel)

	if err := s.fulfiller.Fulfill(ctx, rec); err != nil {
		// The settlement stands regardless; fulfillment gaps are
		// resolved out of band from the audit trail.
		s.logger.Error("fulfillment error", "reference", reference, "error", err)
	}
	if s.notifier != nil {
		s.notifier.PaymentReceived(rec.UserID, rec.TotalAmount, rec.Description)
	}
	return nil
}

func (s *service) GetByReference(ctx context.Context, reference string) (*Record, error) {
	return s.store.GetByReference(ctx, reference)
}

func (s *service) Refund(ctx context.Context, reference string) error {
	moved, err := s.store.MarkRefunded(ctx, reference)
	if err != nil {
		return err
	}
	if !moved {
		rec, err := s.store.GetByReference(ctx, reference)
		if err != nil {
			return err
		}
		return fmt.Errorf("%w: cannot refund payment in status %s", ErrValidation, rec.Status)
	}
	s.logger.Info("payment refunded", "reference", reference)
	return nil
}

func itemLabel(item LineItem) string {
	if item.Label != "" {
		return item.Label
	}
	switch item.Type {
	case ItemEnrollment:
		return "Program enrollment"
	case ItemMembership:
		return "Annual membership"
	case ItemProduct:
		return item.Name
	}
	return ""
}

func metaFromTransaction(tx *paystack.Transaction) SettledMeta {
	return SettledMeta{
		GatewayRef: fmt.Sprintf("%d", tx.ID),
		Channel:    tx.Channel,
		PaidAt:     parsePaidAt(tx.PaidAt),
	}
}

func parsePaidAt(raw string) time.Time {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Now()
}
