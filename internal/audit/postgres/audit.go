package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/saas-admin/internal/audit"
	auditDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/audit"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) audit.RepositoryAPI {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Create(ctx context.Context, row *auditDatamodel.AuditLog) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *AuditRepository) List(ctx context.Context, recordID string, limit int) ([]*auditDatamodel.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&auditDatamodel.AuditLog{})
	if recordID != "" {
		q = q.Where("record_id = ?", recordID)
	}

	var rows []*auditDatamodel.AuditLog
	err := q.Order("created_at DESC").Order("id ASC").Limit(limit).Find(&rows).Error
	return rows, err
}
