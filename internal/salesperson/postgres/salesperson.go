package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/saas-admin/internal"
	salesDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/salesperson"
	"github.com/frahmantamala/saas-admin/internal/salesperson"
)

type SalesPersonRepository struct {
	db *gorm.DB
}

func NewSalesPersonRepository(db *gorm.DB) salesperson.RepositoryAPI {
	return &SalesPersonRepository{db: db}
}

func (r *SalesPersonRepository) Create(ctx context.Context, sp *salesDatamodel.SalesPerson) error {
	err := r.db.WithContext(ctx).Create(sp).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrSalesEmailTaken
	}
	return err
}

func (r *SalesPersonRepository) GetByID(ctx context.Context, id string) (*salesDatamodel.SalesPerson, error) {
	var sp salesDatamodel.SalesPerson
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&sp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrSalesPersonNotFound
		}
		return nil, err
	}
	return &sp, nil
}

// ListWithCounts counts live users per live sales person, ordered by name.
func (r *SalesPersonRepository) ListWithCounts(ctx context.Context) ([]*salesDatamodel.SalesPersonWithCount, error) {
	var rows []*salesDatamodel.SalesPersonWithCount
	err := r.db.WithContext(ctx).
		Model(&salesDatamodel.SalesPerson{}).
		Select("sales_people.*, COUNT(users.id) AS onboarded_count").
		Joins("LEFT JOIN users ON users.onboarding_sales_id = sales_people.id AND users.deleted_at IS NULL").
		Where("sales_people.deleted_at IS NULL").
		Group("sales_people.id").
		Order("sales_people.name ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *SalesPersonRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&salesDatamodel.SalesPerson{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrSalesPersonNotFound
	}
	return nil
}
