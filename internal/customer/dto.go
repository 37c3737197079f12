package customer

import (
	"strings"

	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/core/common/validation"
)

type CreateCustomerDTO struct {
	Username          string      `json:"username" validate:"max=255"`
	Email             string      `json:"email"`
	Package           string      `json:"package"`
	FollowersJoined   int         `json:"followers_joined" validate:"min=0"`
	FollowersNow      int         `json:"followers_now" validate:"min=0"`
	AutomationsCount  int         `json:"automations_count" validate:"min=0"`
	IsAffiliate       bool        `json:"is_affiliate"`
	ReferralCount     int         `json:"referral_count" validate:"min=0"`
	OnboardingSalesID *string     `json:"onboarding_sales_id" validate:"omitempty,uuid"`
	JoinedDate        *dates.Date `json:"joined_date"`
}

func (dto CreateCustomerDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", strings.TrimSpace(dto.Username)).Required()
	v.Field("email", dto.NormalizedEmail()).Required().Email().MaxLength(255)
	v.Field("package", string(dto.NormalizedPackage())).
		OneOf(string(PackageFree), string(PackageStarter), string(PackagePro), string(PackageEnterprise))

	if err := validation.Merge(validation.Struct(dto), v.Validate()); err != nil {
		return err
	}
	return nil
}

func (dto CreateCustomerDTO) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(dto.Email))
}

// NormalizedPackage lowercases the package and defaults it to free.
func (dto CreateCustomerDTO) NormalizedPackage() Package {
	p := strings.ToLower(strings.TrimSpace(dto.Package))
	if p == "" {
		return PackageFree
	}
	return Package(p)
}

type ListFilter struct {
	Search    string
	Package   string
	Affiliate *bool
}

func (f ListFilter) Normalized() ListFilter {
	f.Search = strings.ToLower(strings.TrimSpace(f.Search))
	f.Package = strings.ToLower(strings.TrimSpace(f.Package))
	return f
}
