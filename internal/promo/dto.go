package promo

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/core/common/validation"
)

type CreatePromoDTO struct {
	Code           string          `json:"code" validate:"required,max=64"`
	DiscountType   DiscountType    `json:"discount_type" validate:"required,oneof=percentage flat"`
	Value          decimal.Decimal `json:"value"`
	ExpiryDate     dates.Date      `json:"expiry_date"`
	MaxUses        *int            `json:"max_uses" validate:"omitempty,min=1"`
	AssignedUserID *string         `json:"assigned_user_id" validate:"omitempty,uuid"`
}

func (dto CreatePromoDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("value", dto.Value).NonNegative()
	v.Field("expiry_date", dto.ExpiryDate.Time).Required()

	if err := validation.Merge(validation.Struct(dto), v.Validate()); err != nil {
		return err
	}
	return nil
}

// NormalizedCode is the stored form of the code.
func (dto CreatePromoDTO) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(dto.Code))
}

func (dto CreatePromoDTO) MaxUsesOrDefault() int {
	if dto.MaxUses == nil {
		return DefaultMaxUses
	}
	return *dto.MaxUses
}

type RedeemPromoDTO struct {
	Code   string `json:"code" validate:"required"`
	UserID string `json:"user_id" validate:"omitempty,uuid"`
}

func (dto RedeemPromoDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type CreatePromoResult struct {
	Promo    PromoCodeView `json:"promo"`
	Warnings []string      `json:"warnings,omitempty"`
}
