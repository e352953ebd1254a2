// internal/shop/handler.go
package shop

import (
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

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.FromContext(r.Context())
	if !ok {
		api.Fail(w, h.logger, api.Unauthorized("missing principal"))
		return
	}
	orders, err := h.store.ListByUser(r.Context(), p.ID)
	if err != nil {
		api.Fail(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]any{"orders": orders})
}
