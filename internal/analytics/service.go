package analytics

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/core/events"
)

type RepositoryAPI interface {
	LoadInputs(ctx context.Context) ([]UserRow, []SalesPersonRow, error)
}

type Service struct {
	repo   RepositoryAPI
	cache  *Cache
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Rollup returns the dashboard figures, served from cache when possible.
func (s *Service) Rollup(ctx context.Context) (*Rollup, error) {
	var out Rollup

	key, err := s.cache.BuildKey(ctx, "analytics", "rollup")
	if err == nil {
		err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (interface{}, error) {
			return s.compute(ctx)
		})
		if err == nil {
			return &out, nil
		}
	}
	if appErr, ok := internal.IsAppError(err); ok {
		return nil, appErr
	}

	// cache trouble must not take the dashboard down
	s.logger.Warn("analytics cache unavailable, computing directly", "error", err)
	r, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) compute(ctx context.Context) (*Rollup, error) {
	users, salesPeople, err := s.repo.LoadInputs(ctx)
	if err != nil {
		s.logger.Error("failed to load analytics inputs", "error", err)
		return nil, internal.NewInternalError("failed to compute analytics", err)
	}
	r := Aggregate(users, salesPeople)
	s.logger.Debug("analytics computed", "total_users", r.TotalUsers, "sales_people", len(salesPeople))
	return &r, nil
}

// Invalidate drops every cached rollup.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Subscribe bumps the cache whenever users or sales people come or go.
func (s *Service) Subscribe(bus *events.EventBus) {
	for _, eventType := range []string{
		events.CustomerCreated,
		events.CustomerDeleted,
		events.SalesPersonCreated,
		events.SalesPersonDeleted,
	} {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			if err := s.Invalidate(ctx); err != nil {
				return err
			}
			s.logger.Debug("analytics cache invalidated", "event_type", event.EventType())
			return nil
		})
	}
}
