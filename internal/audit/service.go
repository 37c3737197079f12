package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/saas-admin/internal"
	auditDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/audit"
	"github.com/frahmantamala/saas-admin/internal/core/events"
)

type RepositoryAPI interface {
	Create(ctx context.Context, row *auditDatamodel.AuditLog) error
	List(ctx context.Context, recordID string, limit int) ([]*auditDatamodel.AuditLog, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Record persists a row mutation.
func (s *Service) Record(ctx context.Context, event events.RecordEvent) error {
	if err := s.repo.Create(ctx, FromEvent(event)); err != nil {
		return fmt.Errorf("write audit log for %s %s: %w", event.Table, event.RecordID, err)
	}
	s.logger.Debug("audit log written", "table", event.Table, "record_id", event.RecordID, "action", event.Action)
	return nil
}

// Subscribe records every row mutation published on the bus.
func (s *Service) Subscribe(bus *events.EventBus) {
	for _, eventType := range events.RecordEventTypes {
		bus.Subscribe(eventType, s.handle)
	}
}

func (s *Service) handle(ctx context.Context, event events.Event) error {
	record, ok := event.(events.RecordEvent)
	if !ok {
		s.logger.Warn("ignoring event without record payload", "event_type", event.EventType())
		return nil
	}
	return s.Record(ctx, record)
}

// List returns the newest entries first, optionally for one record.
func (s *Service) List(ctx context.Context, actor internal.AuthContext, recordID string) ([]*Entry, error) {
	if !actor.IsAdmin() {
		return nil, internal.ErrAdminRequired
	}

	rows, err := s.repo.List(ctx, recordID, DefaultLimit)
	if err != nil {
		s.logger.Error("failed to list audit logs", "error", err)
		return nil, internal.NewInternalError("failed to list audit logs", err)
	}
	out := make([]*Entry, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out, nil
}
