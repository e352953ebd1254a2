// internal/payment/handler.go
package payment

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"skillpadi/internal/api"
	"skillpadi/internal/audit"
	"skillpadi/internal/auth"
	"skillpadi/internal/paystack"
	"skillpadi/internal/program"
)

const maxWebhookBody = 1 << 20

type Handler struct {
	service       Service
	webhookSecret string
	recorder      audit.Recorder
	logger        *slog.Logger
}

func NewHandler(service Service, webhookSecret string, recorder audit.Recorder, logger *slog.Logger) *Handler {
	return &Handler{
		service:       service,
		webhookSecret: webhookSecret,
		recorder:      recorder,
		logger:        logger,
	}
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, h.logger, api.Unauthorized("missing principal"))
		return
	}

	var req struct {
		Items     []LineItem `json:"items"`
		ChildName string     `json:"child_name"`
		ChildAge  int        `json:"child_age"`
		ProgramID string     `json:"program_id"`
	}
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	var programID uuid.UUID
	if req.ProgramID != "" {
		id, err := uuid.Parse(req.ProgramID)
		if err != nil {
			api.Fail(w, h.logger, api.Validation("invalid program_id"))
			return
		}
		programID = id
	}

	session, err := h.service.Checkout(r.Context(), p.ID, p.Email, CheckoutRequest{
		Items:     req.Items,
		ChildName: req.ChildName,
		ChildAge:  req.ChildAge,
		ProgramID: programID,
	})
	if err != nil {
		h.failCheckout(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"checkout": session})
}

func (h *Handler) failCheckout(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		api.Fail(w, h.logger, api.Validation(err.Error()))
	case errors.Is(err, program.ErrNotFound):
		api.Fail(w, h.logger, api.NotFound("program not found"))
	case errors.Is(err, program.ErrInactive):
		api.Fail(w, h.logger, api.Validation("program is no longer active"))
	case errors.Is(err, program.ErrFull):
		api.Fail(w, h.logger, api.Validation("program is full, join the waitlist"))
	case errors.Is(err, ErrGateway):
		api.Fail(w, h.logger, api.Gateway("could not start payment, try again shortly", err))
	default:
		api.Fail(w, h.logger, err)
	}
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		api.Fail(w, h.logger, api.Validation("reference is required"))
		return
	}

	result, err := h.service.Verify(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.Fail(w, h.logger, api.NotFound("payment not found"))
		case errors.Is(err, ErrGateway):
			api.Fail(w, h.logger, api.Gateway("could not verify payment", err))
		default:
			api.Fail(w, h.logger, err)
		}
		return
	}
	api.Success(w, http.StatusOK, result)
}

// HandleRefund is the administrator path for returning a settled
// payment, typically after a duplicate-enrollment audit event.
func (h *Handler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")
	if reference == "" {
		api.Fail(w, h.logger, api.Validation("reference is required"))
		return
	}
	if err := h.service.Refund(r.Context(), reference); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			api.Fail(w, h.logger, api.NotFound("payment not found"))
		case errors.Is(err, ErrValidation):
			api.Fail(w, h.logger, api.Validation(err.Error()))
		default:
			api.Fail(w, h.logger, err)
		}
		return
	}
	api.Success(w, http.StatusOK, nil)
}

// HandleWebhook acknowledges every delivery with 200 so the gateway
// stops retrying; rejected and malformed deliveries are recorded for
// review instead of being surfaced as errors.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("read webhook body", "error", err)
		h.ack(w)
		return
	}

	signature := r.Header.Get("x-paystack-signature")
	if !paystack.ValidateSignature(h.webhookSecret, body, signature) {
		h.logger.Warn("webhook signature rejected", "remote", api.ClientIP(r))
		h.record(r, audit.KindWebhookBadSignature, "", map[string]any{"remote": api.ClientIP(r)})
		h.ack(w)
		return
	}

	var event WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn("webhook payload undecodable", "error", err)
		h.record(r, audit.KindWebhookBadPayload, "", map[string]any{"error": err.Error()})
		h.ack(w)
		return
	}

	if err := h.service.HandleWebhookEvent(r.Context(), event); err != nil {
		h.logger.Error("webhook settlement error",
			"event", event.Event, "reference", event.Data.Reference, "error", err)
	}
	h.ack(w)
}

func (h *Handler) ack(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}

func (h *Handler) record(r *http.Request, kind, reference string, details map[string]any) {
	if h.recorder == nil {
		return
	}
	event := audit.Event{Kind: kind, Reference: reference, Details: details}
	if err := h.recorder.Record(r.Context(), event); err != nil {
		h.logger.Error("record audit event", "kind", kind, "error", err)
	}
}
