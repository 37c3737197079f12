package salesperson

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	salesDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/salesperson"
	"github.com/frahmantamala/saas-admin/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, sp *salesDatamodel.SalesPerson) error
	GetByID(ctx context.Context, id string) (*salesDatamodel.SalesPerson, error)
	ListWithCounts(ctx context.Context) ([]*salesDatamodel.SalesPersonWithCount, error)
	SoftDelete(ctx context.Context, id string) error
}

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

// WithClock replaces the time source used for default join dates.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, actor internal.AuthContext, dto CreateSalesPersonDTO) (*SalesPerson, error) {
	if !actor.IsAdmin() {
		s.logger.Warn("create sales person denied: admin role required", "actor", actor.Identity)
		return nil, internal.ErrAdminRequired
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	joined := dates.Truncate(s.now())
	if d := dto.JoinedOn.Ptr(); d != nil {
		joined = *d
	}

	sp := &SalesPerson{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(dto.Name),
		Email:    dto.NormalizedEmail(),
		Active:   true,
		JoinedOn: joined,
	}

	if err := s.repo.Create(ctx, ToDataModel(sp)); err != nil {
		if errors.Is(err, internal.ErrSalesEmailTaken) {
			s.logger.Warn("sales person email already exists", "email", sp.Email)
			return nil, err
		}
		s.logger.Error("failed to create sales person", "error", err)
		return nil, internal.NewInternalError("failed to create sales person", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.SalesPersonCreated, "sales_people", sp.ID, events.ActionCreate, actor.Identity,
		map[string]events.Change{
			"name":  {New: sp.Name},
			"email": {New: sp.Email},
		}))
	s.logger.Info("sales person created", "sales_person_id", sp.ID, "actor", actor.Identity)
	return sp, nil
}

// List returns live sales people by name with their onboarded user counts.
func (s *Service) List(ctx context.Context) ([]*SalesPerson, error) {
	rows, err := s.repo.ListWithCounts(ctx)
	if err != nil {
		s.logger.Error("failed to list sales people", "error", err)
		return nil, internal.NewInternalError("failed to list sales people", err)
	}
	out := make([]*SalesPerson, len(rows))
	for i, row := range rows {
		out[i] = FromDataModelWithCount(row)
	}
	return out, nil
}

// Exists reports whether id names a live sales person.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		if errors.Is(err, internal.ErrSalesPersonNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) Delete(ctx context.Context, actor internal.AuthContext, id string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("delete sales person denied: admin role required", "actor", actor.Identity, "sales_person_id", id)
		return internal.ErrAdminRequired
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, internal.ErrSalesPersonNotFound) {
			return err
		}
		s.logger.Error("failed to delete sales person", "error", err, "sales_person_id", id)
		return internal.NewInternalError("failed to delete sales person", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.SalesPersonDeleted, "sales_people", id, events.ActionDelete, actor.Identity, nil))
	s.logger.Info("sales person deleted", "sales_person_id", id, "actor", actor.Identity)
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
