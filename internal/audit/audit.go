package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	auditDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/audit"
	"github.com/frahmantamala/saas-admin/internal/core/events"
)

// DefaultLimit caps a single audit listing.
const DefaultLimit = 200

// Entry is one recorded row mutation.
type Entry struct {
	ID          string                 `json:"id"`
	TableName   string                 `json:"table_name"`
	RecordID    string                 `json:"record_id"`
	Action      events.Action          `json:"action"`
	PerformedBy *string                `json:"performed_by,omitempty"`
	Diff        map[string]interface{} `json:"diff,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// FromEvent turns a record event into the row that stores it.
func FromEvent(e events.RecordEvent) *auditDatamodel.AuditLog {
	var diff datatypes.JSONMap
	if len(e.Diff) > 0 {
		diff = make(datatypes.JSONMap, len(e.Diff))
		for field, change := range e.Diff {
			diff[field] = map[string]interface{}{"old": change.Old, "new": change.New}
		}
	}

	var performedBy *string
	if e.PerformedBy != "" {
		by := e.PerformedBy
		performedBy = &by
	}

	return &auditDatamodel.AuditLog{
		ID:          uuid.NewString(),
		Table:       e.Table,
		RecordID:    e.RecordID,
		Action:      string(e.Action),
		PerformedBy: performedBy,
		Diff:        diff,
		CreatedAt:   e.OccurredAt(),
	}
}

func FromDataModel(row *auditDatamodel.AuditLog) *Entry {
	return &Entry{
		ID:          row.ID,
		TableName:   row.Table,
		RecordID:    row.RecordID,
		Action:      events.Action(row.Action),
		PerformedBy: row.PerformedBy,
		Diff:        row.Diff,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}
