package expense

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/frahmantamala/saas-admin/internal"
	expenseDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/expense"
)

type Type string

const (
	TypeTravel    Type = "travel"
	TypeTools     Type = "tools"
	TypeMarketing Type = "marketing"
	TypeMisc      Type = "misc"
)

type Status string

const (
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusApproved         Status = "approved"
	StatusReimbursed       Status = "reimbursed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAwaitingApproval, StatusApproved, StatusReimbursed:
		return true
	}
	return false
}

// next is the only forward step allowed from each status.
var next = map[Status]Status{
	StatusAwaitingApproval: StatusApproved,
	StatusApproved:         StatusReimbursed,
}

// CanTransition reports whether from -> to is one legal forward step.
func CanTransition(from, to Status) bool {
	n, ok := next[from]
	return ok && n == to
}

type Expense struct {
	ID          string          `json:"id"`
	Type        Type            `json:"type"`
	Merchant    string          `json:"merchant"`
	ExpenseDate time.Time       `json:"expense_date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      Status          `json:"status"`
	ProductLink *string         `json:"product_link,omitempty"`
	InvoiceURL  *string         `json:"invoice_url,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
	CreatedBy   *string         `json:"created_by,omitempty"`
	ApprovedBy  *string         `json:"approved_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   *time.Time      `json:"-"`
}

// Advance checks that target is the next status of e and returns the
// illegal transition error otherwise. It does not mutate e.
func (e *Expense) Advance(target Status) error {
	if !CanTransition(e.Status, target) {
		return internal.ErrIllegalTransition.WithMessage(
			fmt.Sprintf("cannot move expense from %s to %s", e.Status, target))
	}
	return nil
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		Type:        string(e.Type),
		Merchant:    e.Merchant,
		ExpenseDate: e.ExpenseDate,
		Amount:      e.Amount,
		Description: e.Description,
		Status:      string(e.Status),
		ProductLink: e.ProductLink,
		InvoiceURL:  e.InvoiceURL,
		ExpiryDate:  e.ExpiryDate,
		CreatedBy:   e.CreatedBy,
		ApprovedBy:  e.ApprovedBy,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	var expiry, deleted *time.Time
	if e.ExpiryDate != nil {
		t := e.ExpiryDate.UTC()
		expiry = &t
	}
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deleted = &t
	}
	return &Expense{
		ID:          e.ID,
		Type:        Type(e.Type),
		Merchant:    e.Merchant,
		ExpenseDate: e.ExpenseDate.UTC(),
		Amount:      e.Amount,
		Description: e.Description,
		Status:      Status(e.Status),
		ProductLink: e.ProductLink,
		InvoiceURL:  e.InvoiceURL,
		ExpiryDate:  expiry,
		CreatedBy:   e.CreatedBy,
		ApprovedBy:  e.ApprovedBy,
		CreatedAt:   e.CreatedAt,
		DeletedAt:   deleted,
	}
}

func FromDataModelSlice(rows []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(rows))
	for i, row := range rows {
		result[i] = FromDataModel(row)
	}
	return result
}
