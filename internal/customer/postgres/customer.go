package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/customer"
	customerDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/customer"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) customer.RepositoryAPI {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *customerDatamodel.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// view selects live users with their promo code and sales person names.
func (r *CustomerRepository) view(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&customerDatamodel.Customer{}).
		Select("users.*, promo_codes.code AS promo_code, sales_people.name AS sales_person_name").
		Joins("LEFT JOIN promo_codes ON promo_codes.id = users.promo_code_id").
		Joins("LEFT JOIN sales_people ON sales_people.id = users.onboarding_sales_id").
		Where("users.deleted_at IS NULL")
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*customerDatamodel.CustomerView, error) {
	var row customerDatamodel.CustomerView
	res := r.view(ctx).Where("users.id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, internal.ErrCustomerNotFound
	}
	return &row, nil
}

func (r *CustomerRepository) List(ctx context.Context, filter customer.ListFilter, limit int) ([]*customerDatamodel.CustomerView, error) {
	q := r.view(ctx)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(LOWER(users.username) LIKE ? OR LOWER(users.email) LIKE ?)", like, like)
	}
	if filter.Package != "" {
		q = q.Where("users.package = ?", filter.Package)
	}
	if filter.Affiliate != nil {
		q = q.Where("users.is_affiliate = ?", *filter.Affiliate)
	}

	var rows []*customerDatamodel.CustomerView
	err := q.Order("users.joined_date DESC").Order("users.id ASC").Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *CustomerRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&customerDatamodel.Customer{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrCustomerNotFound
	}
	return nil
}
