package customer

import (
	"time"

	customerDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/customer"
)

type Package string

const (
	PackageFree       Package = "free"
	PackageStarter    Package = "starter"
	PackagePro        Package = "pro"
	PackageEnterprise Package = "enterprise"
)

func (p Package) Valid() bool {
	switch p {
	case PackageFree, PackageStarter, PackagePro, PackageEnterprise:
		return true
	}
	return false
}

// ListLimit caps a single listing page.
const ListLimit = 100

// Customer is an end user of the product, with the display names of its
// promo code and onboarding sales person resolved.
type Customer struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	Package           Package   `json:"package"`
	FollowersJoined   int       `json:"followers_joined"`
	FollowersNow      int       `json:"followers_now"`
	AutomationsCount  int       `json:"automations_count"`
	PromoCodeID       *string   `json:"promo_code_id,omitempty"`
	PromoCode         *string   `json:"promo_code,omitempty"`
	IsAffiliate       bool      `json:"is_affiliate"`
	ReferralCount     int       `json:"referral_count"`
	JoinedDate        time.Time `json:"joined_date"`
	OnboardingSalesID *string   `json:"onboarding_sales_id,omitempty"`
	SalesPersonName   *string   `json:"sales_person_name,omitempty"`
}

func ToDataModel(c *Customer) *customerDatamodel.Customer {
	return &customerDatamodel.Customer{
		ID:                c.ID,
		Username:          c.Username,
		Email:             c.Email,
		Package:           string(c.Package),
		FollowersJoined:   c.FollowersJoined,
		FollowersNow:      c.FollowersNow,
		AutomationsCount:  c.AutomationsCount,
		PromoCodeID:       c.PromoCodeID,
		IsAffiliate:       c.IsAffiliate,
		ReferralCount:     c.ReferralCount,
		JoinedDate:        c.JoinedDate,
		OnboardingSalesID: c.OnboardingSalesID,
	}
}

func FromDataModel(row *customerDatamodel.CustomerView) *Customer {
	return &Customer{
		ID:                row.ID,
		Username:          row.Username,
		Email:             row.Email,
		Package:           Package(row.Package),
		FollowersJoined:   row.FollowersJoined,
		FollowersNow:      row.FollowersNow,
		AutomationsCount:  row.AutomationsCount,
		PromoCodeID:       row.PromoCodeID,
		PromoCode:         row.PromoCode,
		IsAffiliate:       row.IsAffiliate,
		ReferralCount:     row.ReferralCount,
		JoinedDate:        row.JoinedDate.UTC(),
		OnboardingSalesID: row.OnboardingSalesID,
		SalesPersonName:   row.SalesPersonName,
	}
}

func FromDataModelSlice(rows []*customerDatamodel.CustomerView) []*Customer {
	out := make([]*Customer, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out
}
