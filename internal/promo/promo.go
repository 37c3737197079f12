package promo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	promoDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/promo"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFlat       DiscountType = "flat"
)

type Status string

const (
	StatusActive       Status = "active"
	StatusExpired      Status = "expired"
	StatusLimitReached Status = "limit_reached"
)

const DefaultMaxUses = 1

var hundred = decimal.NewFromInt(100)

// Redemption reports what IncrementUsage changed.
type Redemption struct {
	Applied         bool
	Linked          bool
	PreviousPromoID *string
}

type PromoCode struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	DiscountType   DiscountType    `json:"discount_type"`
	Value          decimal.Decimal `json:"value"`
	ExpiryDate     time.Time       `json:"expiry_date"`
	UsageCount     int             `json:"usage_count"`
	MaxUses        int             `json:"max_uses"`
	AssignedUserID *string         `json:"assigned_user_id,omitempty"`
	CreatedBy      *string         `json:"created_by,omitempty"`
	ApprovedBy     *string         `json:"approved_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PromoCodeView is a promo code together with its status at read time.
type PromoCodeView struct {
	*PromoCode
	Status Status `json:"status"`
}

// ComputeStatus derives the effective status of p at now. Expiry wins over
// an exhausted usage limit. A code stays usable through its whole expiry day,
// matching the day-level window the expiry notifications use.
func ComputeStatus(p *PromoCode, now time.Time) Status {
	if p.ExpiryDate.Before(dates.Truncate(now)) {
		return StatusExpired
	}
	if p.UsageCount >= p.MaxUses {
		return StatusLimitReached
	}
	return StatusActive
}

func (p *PromoCode) Status(now time.Time) Status {
	return ComputeStatus(p, now)
}

func (p *PromoCode) View(now time.Time) PromoCodeView {
	return PromoCodeView{PromoCode: p, Status: p.Status(now)}
}

// CheckRedeemable returns the redemption precondition that userID fails at
// now, or nil when the code can be consumed.
func (p *PromoCode) CheckRedeemable(userID string, now time.Time) error {
	switch p.Status(now) {
	case StatusExpired:
		return internal.ErrPromoExpired
	case StatusLimitReached:
		return internal.ErrPromoLimitReached
	}
	if p.AssignedUserID != nil && *p.AssignedUserID != userID {
		return internal.ErrPromoNotAssigned
	}
	return nil
}

func ToDataModel(p *PromoCode) *promoDatamodel.PromoCode {
	return &promoDatamodel.PromoCode{
		ID:             p.ID,
		Code:           p.Code,
		DiscountType:   string(p.DiscountType),
		Value:          p.Value,
		ExpiryDate:     p.ExpiryDate,
		UsageCount:     p.UsageCount,
		MaxUses:        p.MaxUses,
		AssignedUserID: p.AssignedUserID,
		CreatedBy:      p.CreatedBy,
		ApprovedBy:     p.ApprovedBy,
		CreatedAt:      p.CreatedAt,
	}
}

func FromDataModel(p *promoDatamodel.PromoCode) *PromoCode {
	return &PromoCode{
		ID:             p.ID,
		Code:           p.Code,
		DiscountType:   DiscountType(p.DiscountType),
		Value:          p.Value,
		ExpiryDate:     p.ExpiryDate.UTC(),
		UsageCount:     p.UsageCount,
		MaxUses:        p.MaxUses,
		AssignedUserID: p.AssignedUserID,
		CreatedBy:      p.CreatedBy,
		ApprovedBy:     p.ApprovedBy,
		CreatedAt:      p.CreatedAt,
	}
}

func FromDataModelSlice(rows []*promoDatamodel.PromoCode) []*PromoCode {
	result := make([]*PromoCode, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
