package audit

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID          string            `gorm:"column:id;type:uuid;primaryKey"`
	Table       string            `gorm:"column:table_name;not null;index"`
	RecordID    string            `gorm:"column:record_id;type:uuid;not null;index"`
	Action      string            `gorm:"column:action;not null"`
	PerformedBy *string           `gorm:"column:performed_by;type:uuid"`
	Diff        datatypes.JSONMap `gorm:"column:diff;type:jsonb"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
