package expense

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/transport"
	"github.com/frahmantamala/saas-admin/pkg/logger"
)

type ServiceAPI interface {
	Submit(ctx context.Context, actor internal.AuthContext, dto SubmitExpenseDTO) (*Expense, error)
	Advance(ctx context.Context, actor internal.AuthContext, id string, target Status) (*Expense, error)
	List(ctx context.Context, filter ListFilter) ([]*Expense, error)
	Get(ctx context.Context, id string) (*Expense, error)
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

func (h *Handler) SubmitExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto SubmitExpenseDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	expense, err := h.Service.Submit(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, expense)
}

// ListExpenses supports ?status= filtering; "All" means no filter.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	filter := ParseListFilter(r.URL.Query().Get("status"))

	expenses, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"expenses": expenses,
		"total":    len(expenses),
	})
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, expense)
}

func (h *Handler) AdvanceExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto AdvanceExpenseDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	expense, err := h.Service.Advance(r.Context(), actor, chi.URLParam(r, "id"), dto.Status)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, expense)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
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
