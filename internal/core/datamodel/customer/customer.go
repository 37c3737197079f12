package customer

import (
	"time"

	"gorm.io/gorm"
)

// Customer is an end-user record of the SaaS product.
type Customer struct {
	ID                string         `gorm:"column:id;type:uuid;primaryKey"`
	Username          string         `gorm:"column:username;not null"`
	Email             string         `gorm:"column:email;not null;index"`
	Package           string         `gorm:"column:package;not null"`
	FollowersJoined   int            `gorm:"column:followers_joined;not null"`
	FollowersNow      int            `gorm:"column:followers_now;not null"`
	AutomationsCount  int            `gorm:"column:automations_count;not null"`
	PromoCodeID       *string        `gorm:"column:promo_code_id;type:uuid;index"`
	IsAffiliate       bool           `gorm:"column:is_affiliate;not null"`
	ReferralCount     int            `gorm:"column:referral_count;not null"`
	JoinedDate        time.Time      `gorm:"column:joined_date"`
	OnboardingSalesID *string        `gorm:"column:onboarding_sales_id;type:uuid"`
	DeletedAt         gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (Customer) TableName() string {
	return "users"
}

// CustomerView joins the display names of related rows.
type CustomerView struct {
	Customer
	PromoCode       *string `gorm:"column:promo_code"`
	SalesPersonName *string `gorm:"column:sales_person_name"`
}
