// internal/enrollment/handler.go
package enrollment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"skillpadi/internal/api"
	"skillpadi/internal/auth"
	"skillpadi/internal/program"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) HandleEnroll(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, h.logger, api.Unauthorized("missing principal"))
		return
	}

	var req struct {
		ProgramID string `json:"program_id"`
		ChildName string `json:"child_name"`
		ChildAge  int    `json:"child_age"`
	}
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	programID, err := uuid.Parse(req.ProgramID)
	if err != nil {
		api.Fail(w, h.logger, api.Validation("invalid program_id"))
		return
	}

	e, err := h.service.Enroll(r.Context(), p.ID, EnrollRequest{
		ProgramID: programID,
		ChildName: req.ChildName,
		ChildAge:  req.ChildAge,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			api.Fail(w, h.logger, api.Validation(err.Error()))
		case errors.Is(err, program.ErrNotFound):
			api.Fail(w, h.logger, api.NotFound("program not found"))
		case errors.Is(err, program.ErrInactive):
			api.Fail(w, h.logger, api.Validation("program is no longer active"))
		case errors.Is(err, program.ErrFull):
			api.Fail(w, h.logger, api.Validation("program is full, join the waitlist"))
		case errors.Is(err, ErrDuplicate):
			api.Fail(w, h.logger, api.Conflict("child is already enrolled in this program"))
		default:
			api.Fail(w, h.logger, err)
		}
		return
	}
	api.Success(w, http.StatusCreated, map[string]any{"enrollment": e})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, h.logger, api.Unauthorized("missing principal"))
		return
	}
	enrollments, err := h.service.ListByUser(r.Context(), p.ID)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"enrollments": enrollments})
}
