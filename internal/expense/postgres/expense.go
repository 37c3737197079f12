package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/saas-admin/internal"
	expenseDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/expense"
	"github.com/frahmantamala/saas-admin/internal/expense"
)

// ExpenseRepository implements expense.RepositoryAPI using GORM
type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, e *expenseDatamodel.Expense) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*expenseDatamodel.Expense, error) {
	var e expenseDatamodel.Expense
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return &e, nil
}

// List returns live expenses newest first, optionally filtered by status.
func (r *ExpenseRepository) List(ctx context.Context, status string) ([]*expenseDatamodel.Expense, error) {
	var rows []*expenseDatamodel.Expense
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC").Order("id ASC").Find(&rows).Error
	return rows, err
}

func (r *ExpenseRepository) UpdateStatus(ctx context.Context, id, from, to, approvedBy string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&expenseDatamodel.Expense{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":      to,
			"approved_by": approvedBy,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *ExpenseRepository) ListExpiring(ctx context.Context, from, to time.Time) ([]*expenseDatamodel.Expense, error) {
	var rows []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("expiry_date IS NOT NULL AND expiry_date >= ? AND expiry_date <= ?", from, to).
		Order("expiry_date ASC").
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *ExpenseRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&expenseDatamodel.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrExpenseNotFound
	}
	return nil
}
