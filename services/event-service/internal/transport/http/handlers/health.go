package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/baechuer/explore-with-me/services/event-service/internal/domain"
	"github.com/baechuer/explore-with-me/services/event-service/internal/transport/http/response"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler { return &HealthHandler{db: db} }

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			response.Err(w, r, domain.ErrCollaboratorUnavailable("database ping failed"))
			return
		}
	}
	response.Data(w, http.StatusOK, map[string]string{"status": "ok"})
}
