package promo

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/saas-admin/internal"
	promoDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/promo"
	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/internal/core/metrics"
)

type RepositoryAPI interface {
	Create(ctx context.Context, p *promoDatamodel.PromoCode) error
	GetByID(ctx context.Context, id string) (*promoDatamodel.PromoCode, error)
	GetByCode(ctx context.Context, code string) (*promoDatamodel.PromoCode, error)
	List(ctx context.Context) ([]*promoDatamodel.PromoCode, error)
	// IncrementUsage adds one use to the code only while usage_count < max_uses.
	// When userID names a live end user, that record is linked to the code in
	// the same transaction.
	IncrementUsage(ctx context.Context, id, userID string) (Redemption, error)
	SoftDelete(ctx context.Context, id string) error
}

type Service struct {
	repo   RepositoryAPI
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source used for status checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, actor internal.AuthContext, dto CreatePromoDTO) (*CreatePromoResult, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("create promo denied: admin role required", "actor", actor.Identity, "role", actor.Role)
		return nil, internal.ErrAdminRequired
	}

	if err := dto.Validate(); err != nil {
		s.logger.Warn("promo validation failed", "error", err, "actor", actor.Identity)
		return nil, err
	}

	code := dto.NormalizedCode()
	if _, err := s.repo.GetByCode(ctx, code); err == nil {
		s.logger.Warn("promo code already exists", "code", code)
		return nil, internal.ErrPromoCodeTaken
	} else if !errors.Is(err, internal.ErrPromoNotFound) {
		s.logger.Error("failed to check promo code uniqueness", "error", err, "code", code)
		return nil, internal.NewInternalError("failed to create promo code", err)
	}

	var warnings []string
	if dto.DiscountType == DiscountPercentage && dto.Value.GreaterThan(hundred) {
		warnings = append(warnings, "percentage discount value exceeds 100")
	}

	creator := actor.Identity
	p := &PromoCode{
		ID:             uuid.NewString(),
		Code:           code,
		DiscountType:   dto.DiscountType,
		Value:          dto.Value.Round(2),
		ExpiryDate:     dto.ExpiryDate.Time,
		UsageCount:     0,
		MaxUses:        dto.MaxUsesOrDefault(),
		AssignedUserID: dto.AssignedUserID,
		CreatedBy:      &creator,
		ApprovedBy:     &creator,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Create(ctx, ToDataModel(p)); err != nil {
		if errors.Is(err, internal.ErrPromoCodeTaken) {
			return nil, err
		}
		s.logger.Error("failed to create promo code", "error", err, "code", code)
		return nil, internal.NewInternalError("failed to create promo code", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.PromoCreated, "promo_codes", p.ID, events.ActionCreate, actor.Identity,
		map[string]events.Change{
			"code":          {New: p.Code},
			"discount_type": {New: p.DiscountType},
			"value":         {New: p.Value.StringFixed(2)},
			"max_uses":      {New: p.MaxUses},
		}))

	s.logger.Info("promo code created successfully",
		"promo_id", p.ID,
		"code", p.Code,
		"max_uses", p.MaxUses,
		"warnings", len(warnings))

	return &CreatePromoResult{Promo: p.View(s.now()), Warnings: warnings}, nil
}

// Redeem consumes one use of the code named in dto on behalf of dto.UserID.
func (s *Service) Redeem(ctx context.Context, actor internal.AuthContext, dto RedeemPromoDTO) (*PromoCodeView, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.repo.GetByCode(ctx, dto.Code)
	if err != nil {
		if errors.Is(err, internal.ErrPromoNotFound) {
			metrics.PromoRedemptions.WithLabelValues("not_found").Inc()
			return nil, err
		}
		s.logger.Error("failed to load promo code for redemption", "error", err, "code", dto.Code)
		return nil, internal.NewInternalError("failed to redeem promo code", err)
	}

	p := FromDataModel(row)
	now := s.now()
	if err := p.CheckRedeemable(dto.UserID, now); err != nil {
		appErr, _ := internal.IsAppError(err)
		metrics.PromoRedemptions.WithLabelValues(string(appErr.Code)).Inc()
		s.logger.Warn("promo redemption rejected",
			"promo_id", p.ID,
			"code", p.Code,
			"user_id", dto.UserID,
			"reason", appErr.Code)
		return nil, err
	}

	res, err := s.repo.IncrementUsage(ctx, p.ID, dto.UserID)
	if err != nil {
		s.logger.Error("failed to increment promo usage", "error", err, "promo_id", p.ID)
		return nil, internal.NewInternalError("failed to redeem promo code", err)
	}
	if !res.Applied {
		metrics.PromoRedemptions.WithLabelValues(string(internal.ErrCodeRedemptionConflict)).Inc()
		s.logger.Warn("promo redemption lost to a concurrent redemption", "promo_id", p.ID, "code", p.Code)
		return nil, internal.ErrRedemptionConflict
	}

	before := p.UsageCount
	p.UsageCount++
	metrics.PromoRedemptions.WithLabelValues("redeemed").Inc()

	diff := map[string]events.Change{"usage_count": {Old: before, New: p.UsageCount}}
	if dto.UserID != "" {
		diff["redeemed_by"] = events.Change{New: dto.UserID}
	}
	s.publish(ctx, events.NewRecordEvent(events.PromoRedeemed, "promo_codes", p.ID, events.ActionUpdate, actor.Identity, diff))
	if res.Linked {
		s.publish(ctx, events.NewRecordEvent(events.CustomerPromoLinked, "users", dto.UserID, events.ActionUpdate, actor.Identity,
			map[string]events.Change{"promo_code_id": {Old: res.PreviousPromoID, New: p.ID}}))
	}

	s.logger.Info("promo code redeemed successfully",
		"promo_id", p.ID,
		"code", p.Code,
		"user_id", dto.UserID,
		"usage_count", p.UsageCount,
		"max_uses", p.MaxUses)

	view := p.View(now)
	return &view, nil
}

func (s *Service) List(ctx context.Context) ([]PromoCodeView, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list promo codes", "error", err)
		return nil, internal.NewInternalError("failed to list promo codes", err)
	}

	now := s.now()
	views := make([]PromoCodeView, 0, len(rows))
	for _, p := range FromDataModelSlice(rows) {
		views = append(views, p.View(now))
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, id string) (*PromoCodeView, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrPromoNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get promo code", "error", err, "promo_id", id)
		return nil, internal.NewInternalError("failed to get promo code", err)
	}
	view := FromDataModel(row).View(s.now())
	return &view, nil
}

func (s *Service) Delete(ctx context.Context, actor internal.AuthContext, id string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("delete promo denied: admin role required", "actor", actor.Identity, "promo_id", id)
		return internal.ErrAdminRequired
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, internal.ErrPromoNotFound) {
			return err
		}
		s.logger.Error("failed to delete promo code", "error", err, "promo_id", id)
		return internal.NewInternalError("failed to delete promo code", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.PromoDeleted, "promo_codes", id, events.ActionDelete, actor.Identity, nil))
	s.logger.Info("promo code deleted", "promo_id", id, "actor", actor.Identity)
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
