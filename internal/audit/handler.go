package audit

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/transport"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, actor internal.AuthContext, recordID string) ([]*Entry, error)
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

// ListAuditLogs supports ?record_id= filtering.
func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	entries, err := h.Service.List(r.Context(), actor, r.URL.Query().Get("record_id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"audit_logs": entries,
		"total":      len(entries),
	})
}
