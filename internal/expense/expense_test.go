package expense_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/expense"
)

var _ = Describe("Expense transitions", func() {
	statuses := []expense.Status{expense.StatusAwaitingApproval, expense.StatusApproved, expense.StatusReimbursed}

	It("allows exactly the two forward steps", func() {
		allowed := 0
		for _, from := range statuses {
			for _, to := range statuses {
				if expense.CanTransition(from, to) {
					allowed++
				}
			}
		}
		Expect(allowed).To(Equal(2))
		Expect(expense.CanTransition(expense.StatusAwaitingApproval, expense.StatusApproved)).To(BeTrue())
		Expect(expense.CanTransition(expense.StatusApproved, expense.StatusReimbursed)).To(BeTrue())
	})

	It("rejects skipping, staying and going back", func() {
		e := &expense.Expense{Status: expense.StatusAwaitingApproval}
		Expect(errors.Is(e.Advance(expense.StatusReimbursed), internal.ErrIllegalTransition)).To(BeTrue())
		Expect(errors.Is(e.Advance(expense.StatusAwaitingApproval), internal.ErrIllegalTransition)).To(BeTrue())

		e.Status = expense.StatusReimbursed
		Expect(errors.Is(e.Advance(expense.StatusApproved), internal.ErrIllegalTransition)).To(BeTrue())
		Expect(e.Status).To(Equal(expense.StatusReimbursed))
	})
})

var _ = Describe("SubmitExpenseDTO", func() {
	valid := func() expense.SubmitExpenseDTO {
		link := "https://vendor.example.com/plan"
		return expense.SubmitExpenseDTO{
			Type:        expense.TypeTools,
			Merchant:    "Figma",
			ExpenseDate: dates.New(time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC)),
			Amount:      decimal.RequireFromString("15.00"),
			ProductLink: &link,
		}
	}

	It("accepts a complete submission", func() {
		Expect(valid().Validate()).To(Succeed())
	})

	It("requires merchant, amount and expense date", func() {
		err := expense.SubmitExpenseDTO{Type: expense.TypeMisc}.Validate()
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())

		details, ok := appErr.Details.(internal.ValidationErrors)
		Expect(ok).To(BeTrue())
		fields := []string{}
		for _, e := range details.Errors {
			fields = append(fields, e.Field)
		}
		Expect(fields).To(ContainElements("merchant", "amount", "expense_date"))
	})

	It("rejects amounts with more than two decimals", func() {
		dto := valid()
		dto.Amount = decimal.RequireFromString("10.005")
		Expect(dto.Validate()).NotTo(Succeed())
	})

	It("rejects malformed links", func() {
		dto := valid()
		bad := "not a url"
		dto.InvoiceURL = &bad
		Expect(dto.Validate()).NotTo(Succeed())
	})

	It("rejects unknown types", func() {
		dto := valid()
		dto.Type = "food"
		Expect(dto.Validate()).NotTo(Succeed())
	})
})
