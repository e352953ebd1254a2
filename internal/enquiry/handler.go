// internal/enquiry/handler.go
package enquiry

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"skillpadi/internal/api"
)

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Message   string `json:"message"`
		ProgramID string `json:"program_id"`
	}
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)
	if req.Name == "" || req.Message == "" {
		api.Fail(w, h.logger, api.Validation("name and message are required"))
		return
	}
	if len(req.Message) > maxMessageLength {
		api.Fail(w, h.logger, api.Validation("message is too long"))
		return
	}

	e := &Enquiry{
		ID:      uuid.New(),
		Name:    req.Name,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if req.ProgramID != "" {
		id, err := uuid.Parse(req.ProgramID)
		if err != nil {
			api.Fail(w, h.logger, api.Validation("invalid program_id"))
			return
		}
		e.ProgramID = &id
	}

	if err := h.store.Create(r.Context(), e); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, map[string]any{"enquiry": e})
}
