// internal/users/handler.go
package users

import (
	"errors"
	"log/slog"
	"net/http"

	"skillpadi/internal/api"
	"skillpadi/internal/auth"
)

type Handler struct {
	store  Store
	logger *slog.Logger
}

func NewHandler(store Store, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// HandleMe returns the caller's stored profile, falling back to the
// principal itself when no row exists yet.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, h.logger, api.Unauthorized("missing principal"))
		return
	}
	u, err := h.store.GetByID(r.Context(), p.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			api.Success(w, http.StatusOK, map[string]any{"user": &User{
				ID: p.ID, Email: p.Email, Phone: p.Phone, Role: p.Role,
			}})
			return
		}
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"user": u})
}
