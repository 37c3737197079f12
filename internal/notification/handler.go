package notification

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/transport"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, at time.Time) ([]Notification, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI, lg *slog.Logger) *Handler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// ListNotifications accepts an optional ?now= (YYYY-MM-DD or RFC 3339) to
// evaluate the window on another day.
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	var at time.Time
	if raw := r.URL.Query().Get("now"); raw != "" {
		d, err := dates.Parse(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "now must be a date (YYYY-MM-DD)")
			return
		}
		at = d.Time
	}

	notifications, err := h.Service.List(r.Context(), at)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notifications,
		"total":         len(notifications),
	})
}
