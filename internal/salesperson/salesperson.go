package salesperson

import (
	"strings"
	"time"

	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/core/common/validation"
	salesDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/salesperson"
)

type SalesPerson struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Active         bool      `json:"active"`
	JoinedOn       time.Time `json:"joined_on"`
	OnboardedCount int64     `json:"onboarded_count"`
}

type CreateSalesPersonDTO struct {
	Name     string      `json:"name" validate:"required,max=255"`
	Email    string      `json:"email"`
	JoinedOn *dates.Date `json:"joined_on"`
}

func (dto CreateSalesPersonDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("email", dto.NormalizedEmail()).Required().Email().MaxLength(255)

	if err := validation.Merge(validation.Struct(dto), v.Validate()); err != nil {
		return err
	}
	return nil
}

func (dto CreateSalesPersonDTO) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(dto.Email))
}

func ToDataModel(sp *SalesPerson) *salesDatamodel.SalesPerson {
	return &salesDatamodel.SalesPerson{
		ID:       sp.ID,
		Name:     sp.Name,
		Email:    sp.Email,
		Active:   sp.Active,
		JoinedOn: sp.JoinedOn,
	}
}

func FromDataModel(sp *salesDatamodel.SalesPerson) *SalesPerson {
	return &SalesPerson{
		ID:       sp.ID,
		Name:     sp.Name,
		Email:    sp.Email,
		Active:   sp.Active,
		JoinedOn: sp.JoinedOn.UTC(),
	}
}

func FromDataModelWithCount(row *salesDatamodel.SalesPersonWithCount) *SalesPerson {
	sp := FromDataModel(&row.SalesPerson)
	sp.OnboardedCount = row.OnboardedCount
	return sp
}
