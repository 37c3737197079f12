package expense

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/core/common/validation"
)

type SubmitExpenseDTO struct {
	Type        Type            `json:"type" validate:"required,oneof=travel tools marketing misc"`
	Merchant    string          `json:"merchant" validate:"max=255"`
	ExpenseDate dates.Date      `json:"expense_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=1000"`
	ProductLink *string         `json:"product_link"`
	InvoiceURL  *string         `json:"invoice_url"`
	ExpiryDate  *dates.Date     `json:"expiry_date"`
}

func (dto SubmitExpenseDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("merchant", strings.TrimSpace(dto.Merchant)).Required()
	v.Field("amount", dto.Amount).PositiveAmount()
	v.Field("expense_date", dto.ExpenseDate.Time).Required()
	v.Field("product_link", dto.ProductLink).URL()
	v.Field("invoice_url", dto.InvoiceURL).URL()

	if err := validation.Merge(validation.Struct(dto), v.Validate()); err != nil {
		return err
	}
	return nil
}

type AdvanceExpenseDTO struct {
	Status Status `json:"status" validate:"required,oneof=awaiting_approval approved reimbursed"`
}

func (dto AdvanceExpenseDTO) Validate() error {
	if err := validation.Struct(dto); err != nil {
		return err
	}
	return nil
}

type ListFilter struct {
	Status Status
}

// ParseListFilter reads a status query value. Empty and "All" (any case)
// select every status.
func ParseListFilter(raw string) ListFilter {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return ListFilter{}
	}
	return ListFilter{Status: Status(raw)}
}
