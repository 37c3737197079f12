package notification

import (
	"context"
	"iter"
	"log/slog"
	"slices"
	"time"

	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	"github.com/frahmantamala/saas-admin/internal/core/metrics"
	"github.com/frahmantamala/saas-admin/internal/expense"
)

// ExpenseSource loads live expenses whose expiry date falls in [from, to].
type ExpenseSource interface {
	ListExpiring(ctx context.Context, from, to time.Time) ([]*expense.Expense, error)
}

type Service struct {
	expenses ExpenseSource
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(expenses ExpenseSource, logger *slog.Logger) *Service {
	return &Service{
		expenses: expenses,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// List derives the notifications for the calendar day of at, or of the
// service clock when at is zero.
func (s *Service) List(ctx context.Context, at time.Time) ([]Notification, error) {
	seq, err := s.derive(ctx, at)
	if err != nil {
		return nil, err
	}

	out := slices.Collect(seq)
	if out == nil {
		out = []Notification{}
	}
	for _, n := range out {
		metrics.NotificationsDerived.WithLabelValues(string(n.Severity)).Inc()
	}
	return out, nil
}

// Summary counts the notifications List would return for at.
func (s *Service) Summary(ctx context.Context, at time.Time) (Summary, error) {
	seq, err := s.derive(ctx, at)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(seq), nil
}

func (s *Service) derive(ctx context.Context, at time.Time) (iter.Seq[Notification], error) {
	if at.IsZero() {
		at = s.now()
	}
	today := dates.Truncate(at)

	// one day of slack each side; Derive applies the exact window
	rows, err := s.expenses.ListExpiring(ctx, today.AddDate(0, 0, -1), today.AddDate(0, 0, WindowDays+1))
	if err != nil {
		s.logger.Error("failed to load expiring expenses", "error", err)
		return nil, err
	}

	s.logger.Debug("deriving notifications", "today", today.Format(dates.Layout), "candidates", len(rows))
	return Derive(rows, today), nil
}
