package analytics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/saas-admin/internal/transport"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

type ServiceAPI interface {
	Rollup(ctx context.Context) (*Rollup, error)
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

func (h *Handler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	rollup, err := h.Service.Rollup(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rollup)
}
