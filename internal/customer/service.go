package customer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/common/dates"
	customerDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/customer"
	"github.com/frahmantamala/saas-admin/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, c *customerDatamodel.Customer) error
	GetByID(ctx context.Context, id string) (*customerDatamodel.CustomerView, error)
	List(ctx context.Context, filter ListFilter, limit int) ([]*customerDatamodel.CustomerView, error)
	SoftDelete(ctx context.Context, id string) error
}

// SalesDirectory resolves onboarding sales people.
type SalesDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	repo   RepositoryAPI
	sales  SalesDirectory
	events events.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo RepositoryAPI, sales SalesDirectory, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		sales:  sales,
		events: publisher,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, actor internal.AuthContext, dto CreateCustomerDTO) (*Customer, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if dto.OnboardingSalesID != nil && s.sales != nil {
		ok, err := s.sales.Exists(ctx, *dto.OnboardingSalesID)
		if err != nil {
			s.logger.Error("failed to resolve onboarding sales person", "error", err)
			return nil, internal.NewInternalError("failed to resolve onboarding sales person", err)
		}
		if !ok {
			s.logger.Warn("onboarding sales person not found", "sales_person_id", *dto.OnboardingSalesID)
			return nil, internal.ErrSalesPersonNotFound
		}
	}

	joined := dates.Truncate(s.now())
	if d := dto.JoinedDate.Ptr(); d != nil {
		joined = *d
	}

	c := &Customer{
		ID:                uuid.NewString(),
		Username:          strings.TrimSpace(dto.Username),
		Email:             dto.NormalizedEmail(),
		Package:           dto.NormalizedPackage(),
		FollowersJoined:   dto.FollowersJoined,
		FollowersNow:      dto.FollowersNow,
		AutomationsCount:  dto.AutomationsCount,
		IsAffiliate:       dto.IsAffiliate,
		ReferralCount:     dto.ReferralCount,
		JoinedDate:        joined,
		OnboardingSalesID: dto.OnboardingSalesID,
	}

	if err := s.repo.Create(ctx, ToDataModel(c)); err != nil {
		s.logger.Error("failed to create user", "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.CustomerCreated, "users", c.ID, events.ActionCreate, actor.Identity,
		map[string]events.Change{
			"username": {New: c.Username},
			"email":    {New: c.Email},
			"package":  {New: string(c.Package)},
		}))
	s.logger.Info("user created", "user_id", c.ID, "package", c.Package, "actor", actor.Identity)
	return c, nil
}

// List returns at most ListLimit users, newest first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Customer, error) {
	rows, err := s.repo.List(ctx, filter.Normalized(), ListLimit)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Customer, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, internal.ErrCustomerNotFound) {
			return nil, err
		}
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, internal.NewInternalError("failed to get user", err)
	}
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, actor internal.AuthContext, id string) error {
	if !actor.IsAdmin() {
		s.logger.Warn("delete user denied: admin role required", "actor", actor.Identity, "user_id", id)
		return internal.ErrAdminRequired
	}
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, internal.ErrCustomerNotFound) {
			return err
		}
		s.logger.Error("failed to delete user", "error", err, "user_id", id)
		return internal.NewInternalError("failed to delete user", err)
	}

	s.publish(ctx, events.NewRecordEvent(events.CustomerDeleted, "users", id, events.ActionDelete, actor.Identity, nil))
	s.logger.Info("user deleted", "user_id", id, "actor", actor.Identity)
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
