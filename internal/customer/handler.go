package customer

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/transport"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

type ServiceAPI interface {
	Create(ctx context.Context, actor internal.AuthContext, dto CreateCustomerDTO) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]*Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	Delete(ctx context.Context, actor internal.AuthContext, id string) error
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

// ListUsers supports ?search=, ?package= and ?affiliate=true|false.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{Search: q.Get("search"), Package: q.Get("package")}
	if raw := q.Get("affiliate"); raw != "" {
		affiliate, err := strconv.ParseBool(raw)
		if err != nil {
			h.WriteError(w, http.StatusBadRequest, "affiliate must be true or false")
			return
		}
		filter.Affiliate = &affiliate
	}

	users, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto CreateCustomerDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	user, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
