package expense

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/saas-admin/internal"
	expenseDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/expense"
	"github.com/frahmantamala/saas-admin/internal/core/events"
	"github.com/frahmantamala/saas-admin/internal/core/metrics"
)

// RepositoryAPI defines the data access methods for expenses
type RepositoryAPI interface {
	Create(ctx context.Context, e *expenseDatamodel.Expense) error
	GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error)
	List(ctx context.Context, status string) ([]*expenseDatamodel.Expense, error)
	// UpdateStatus moves the row from one status to another only if it still
	// holds from, and reports whether it did.
	UpdateStatus(ctx context.Context, id, from, to, approvedBy string) (bool, error)
	// ListExpiring returns live rows whose expiry date falls in [from, to].
	ListExpiring(ctx context.Context, from, to time.Time) ([]*expenseDatamodel.Expense, error)
	SoftDelete(ctx context.Context, id string) error
}

// Service handles the expense lifecycle
type Service struct {
	repo   RepositoryAPI
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: publisher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Submit records a new expense awaiting approval.
func (s *Service) Submit(ctx context.Context, actor internal.AuthContext, dto SubmitExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("expense validation failed", "error", err, "actor", actor.Identity)
		return nil, err
	}

	creator := actor.Identity
	e := &Expense{
		ID:          uuid.NewString(),
		Type:        dto.Type,
		Merchant:    strings.TrimSpace(dto.Merchant),
		ExpenseDate: dto.ExpenseDate.Time,
		Amount:      dto.Amount,
		Description: strings.TrimSpace(dto.Description),
		Status:      StatusAwaitingApproval,
		ProductLink: nonEmpty(dto.ProductLink),
		InvoiceURL:  nonEmpty(dto.InvoiceURL),
		ExpiryDate:  dto.ExpiryDate.Ptr(),
		CreatedBy:   &creator,
		CreatedAt:   s.now(),
	}

	if err := s.repo.Create(ctx, ToDataModel(e)); err != nil {
		s.logger.Error("failed to create expense", "error", err, "actor", actor.Identity)
		return nil, internal.NewInternalError("failed to submit expense", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.ExpenseSubmitted, "expenses", e.ID, events.ActionCreate, actor.Identity,
		map[string]events.Change{
			"merchant": {New: e.Merchant},
			"amount":   {New: e.Amount.StringFixed(2)},
			"status":   {New: e.Status},
		}))

	s.logger.Info("expense submitted",
		"expense_id", e.ID,
		"merchant", e.Merchant,
		"amount", e.Amount.StringFixed(2),
		"actor", actor.Identity)

	return e, nil
}

// Advance moves an expense one step forward. Only admins may call it.
func (s *Service) Advance(ctx context.Context, actor internal.AuthContext, id string, target Status) (*Expense, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("expense transition denied: admin role required",
			"expense_id", id,
			"actor", actor.Identity,
			"role", actor.Role)
		return nil, internal.ErrApproverRequired
	}

	if err := (AdvanceExpenseDTO{Status: target}).Validate(); err != nil {
		return nil, err
	}

	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := e.Advance(target); err != nil {
		s.logger.Warn("illegal expense transition",
			"expense_id", id,
			"from", e.Status,
			"to", target,
			"actor", actor.Identity)
		return nil, err
	}

	from := e.Status
	applied, err := s.repo.UpdateStatus(ctx, id, string(from), string(target), actor.Identity)
	if err != nil {
		s.logger.Error("failed to update expense status", "error", err, "expense_id", id)
		return nil, internal.NewInternalError("failed to update expense status", err)
	}
	if !applied {
		s.logger.Warn("expense status changed concurrently", "expense_id", id, "expected", from, "target", target)
		return nil, internal.ErrStatusChanged
	}

	before := e.ApprovedBy
	approver := actor.Identity
	e.Status = target
	e.ApprovedBy = &approver

	metrics.ExpenseTransitions.WithLabelValues(string(from), string(target)).Inc()
	s.publish(ctx, events.NewRecordEvent(events.ExpenseAdvanced, "expenses", id, events.ActionUpdate, actor.Identity,
		map[string]events.Change{
			"status":      {Old: from, New: target},
			"approved_by": {Old: before, New: approver},
		}))

	s.logger.Info("expense status updated",
		"expense_id", id,
		"from", from,
		"to", target,
		"actor", actor.Identity)

	return e, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Expense, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, internal.NewValidationFieldError("status", "status must be one of [awaiting_approval approved reimbursed]", internal.ErrCodeInvalidEnum)
	}

	rows, err := s.repo.List(ctx, string(filter.Status))
	if err != nil {
		s.logger.Error("failed to list expenses", "error", err, "status", filter.Status)
		return nil, internal.NewInternalError("failed to list expenses", err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Expense, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrExpenseNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get expense", "error", err, "expense_id", id)
		return nil, internal.NewInternalError("failed to get expense", err)
	}
	return FromDataModel(row), nil
}

// ListExpiring returns live expenses whose expiry date falls in [from, to].
func (s *Service) ListExpiring(ctx context.Context, from, to time.Time) ([]*Expense, error) {
	rows, err := s.repo.ListExpiring(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to list expiring expenses", "error", err)
		return nil, internal.NewInternalError("failed to list expiring expenses", err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) Delete(ctx context.Context, actor internal.AuthContext, id string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("delete expense denied: admin role required", "actor", actor.Identity, "expense_id", id)
		return internal.ErrAdminRequired
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, internal.ErrExpenseNotFound) {
			return err
		}
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return internal.NewInternalError("failed to delete expense", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.ExpenseDeleted, "expenses", id, events.ActionDelete, actor.Identity, nil))
	s.logger.Info("expense deleted", "expense_id", id, "actor", actor.Identity)
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}

func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
