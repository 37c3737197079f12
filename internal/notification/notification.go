package notification

import (
	"fmt"
	"iter"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/expense"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

const (
	// WindowDays is how far ahead of now an expiry still produces an alert.
	WindowDays = 10
	// CriticalDays is the largest daysLeft that is still critical.
	CriticalDays = 3

	TypeExpiry = "expiry"
	title      = "Expense Expiry Warning"
)

type Notification struct {
	ID        string     `json:"id"`
	ExpenseID string     `json:"expense_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Severity  Severity   `json:"severity"`
	DaysLeft  int        `json:"days_left"`
	Date      dates.Date `json:"date"`
}

// Derive yields one notification per live expense whose expiry date lies in
// [now, now+WindowDays], ordered by expiry date then expense id. The
// sequence is computed from expenses on every iteration and never mutates
// them, so ranging over it twice gives the same result.
func Derive(expenses []*expense.Expense, now time.Time) iter.Seq[Notification] {
	return func(yield func(Notification) bool) {
		for _, e := range window(expenses, now) {
			if !yield(build(e, now)) {
				return
			}
		}
	}
}

func window(expenses []*expense.Expense, now time.Time) []*expense.Expense {
	limit := now.AddDate(0, 0, WindowDays)

	var in []*expense.Expense
	for _, e := range expenses {
		if e == nil || e.DeletedAt != nil || e.ExpiryDate == nil {
			continue
		}
		if e.ExpiryDate.Before(now) || e.ExpiryDate.After(limit) {
			continue
		}
		in = append(in, e)
	}

	slices.SortStableFunc(in, func(a, b *expense.Expense) int {
		if c := a.ExpiryDate.Compare(*b.ExpiryDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return in
}

func build(e *expense.Expense, now time.Time) Notification {
	days := DaysLeft(*e.ExpiryDate, now)
	return Notification{
		ID:        "exp-" + e.ID,
		ExpenseID: e.ID,
		Type:      TypeExpiry,
		Title:     title,
		Message:   fmt.Sprintf("Subscription for %s expires in %d day(s).", e.Merchant, days),
		Severity:  SeverityFor(days),
		DaysLeft:  days,
		Date:      dates.New(*e.ExpiryDate),
	}
}

// DaysLeft rounds the time until expiry up to whole days, never below zero.
func DaysLeft(expiry, now time.Time) int {
	days := int(math.Ceil(expiry.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}

func SeverityFor(daysLeft int) Severity {
	if daysLeft <= CriticalDays {
		return SeverityCritical
	}
	return SeverityWarning
}

// Summary counts notifications per severity.
type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
}

func Summarize(seq iter.Seq[Notification]) Summary {
	var s Summary
	for n := range seq {
		s.Total++
		switch n.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityWarning:
			s.Warning++
		}
	}
	return s
}
