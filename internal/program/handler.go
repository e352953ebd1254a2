// internal/program/handler.go
package program

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"skillpadi/internal/api"
)

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("all") == ""
	programs, err := h.service.List(r.Context(), activeOnly)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"programs": programs})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.Fail(w, h.logger, api.Validation("invalid program ID"))
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, h.logger, api.NotFound("program not found"))
			return
		}
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"program": p})
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		Schedule        string `json:"schedule"`
		Location        string `json:"location"`
		PricePerSession int64  `json:"price_per_session"`
		Sessions        int    `json:"sessions"`
		SpotsTotal      int    `json:"spots_total"`
	}
	if err := api.DecodeJSON(r, &req); err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	if req.Name == "" || req.SpotsTotal <= 0 {
		api.Fail(w, h.logger, api.Validation("name and a positive spots_total are required"))
		return
	}

	p, err := h.service.Create(r.Context(), &Program{
		Name:            req.Name,
		Schedule:        req.Schedule,
		Location:        req.Location,
		PricePerSession: req.PricePerSession,
		Sessions:        req.Sessions,
		SpotsTotal:      req.SpotsTotal,
	})
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusCreated, map[string]any{"program": p})
}

func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.Fail(w, h.logger, api.Validation("invalid program ID"))
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Fail(w, h.logger, api.NotFound("program not found"))
			return
		}
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, nil)
}
