package promo

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
	Create(ctx context.Context, actor internal.AuthContext, dto CreatePromoDTO) (*CreatePromoResult, error)
	Redeem(ctx context.Context, actor internal.AuthContext, dto RedeemPromoDTO) (*PromoCodeView, error)
	List(ctx context.Context) ([]PromoCodeView, error)
	Get(ctx context.Context, id string) (*PromoCodeView, error)
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

func (h *Handler) ListPromos(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Service.List(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"promos": promos,
		"total":  len(promos),
	})
}

func (h *Handler) GetPromo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	promo, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, promo)
}

func (h *Handler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto CreatePromoDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	result, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, result)
}

func (h *Handler) RedeemPromo(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.Actor(w, r)
	if !ok {
		return
	}

	var dto RedeemPromoDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	promo, err := h.Service.Redeem(r.Context(), actor, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, promo)
}

func (h *Handler) DeletePromo(w http.ResponseWriter, r *http.Request) {
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
