package promo

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PromoCode struct {
	ID             string          `gorm:"column:id;type:uuid;primaryKey"`
	Code           string          `gorm:"column:code;not null;uniqueIndex"`
	DiscountType   string          `gorm:"column:discount_type;not null"`
	Value          decimal.Decimal `gorm:"column:value;type:numeric(10,2);not null"`
	ExpiryDate     time.Time       `gorm:"column:expiry_date;type:date;not null"`
	UsageCount     int             `gorm:"column:usage_count;not null"`
	MaxUses        int             `gorm:"column:max_uses;not null"`
	AssignedUserID *string         `gorm:"column:assigned_user_id;type:uuid"`
	CreatedBy      *string         `gorm:"column:created_by;type:uuid"`
	ApprovedBy     *string         `gorm:"column:approved_by;type:uuid"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (PromoCode) TableName() string {
	return "promo_codes"
}
