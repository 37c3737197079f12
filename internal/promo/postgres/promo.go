package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/frahmantamala/saas-admin/internal"
	customerDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/customer"
	promoDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/promo"
	"github.com/frahmantamala/saas-admin/internal/promo"
)

// PromoRepository implements promo.RepositoryAPI using GORM
type PromoRepository struct {
	db *gorm.DB
}

func NewPromoRepository(db *gorm.DB) promo.RepositoryAPI {
	return &PromoRepository{db: db}
}

func (r *PromoRepository) Create(ctx context.Context, p *promoDatamodel.PromoCode) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrPromoCodeTaken
	}
	return err
}

func (r *PromoRepository) GetByID(ctx context.Context, id string) (*promoDatamodel.PromoCode, error) {
	var p promoDatamodel.PromoCode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPromoNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByCode matches case-insensitively; codes are stored uppercase.
func (r *PromoRepository) GetByCode(ctx context.Context, code string) (*promoDatamodel.PromoCode, error) {
	var p promoDatamodel.PromoCode
	err := r.db.WithContext(ctx).
		Where("UPPER(code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrPromoNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PromoRepository) List(ctx context.Context) ([]*promoDatamodel.PromoCode, error) {
	var rows []*promoDatamodel.PromoCode
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("code ASC").
		Find(&rows).Error
	return rows, err
}

func (r *PromoRepository) IncrementUsage(ctx context.Context, id, userID string) (promo.Redemption, error) {
	var out promo.Redemption
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the guard and the increment are one statement
		res := tx.Model(&promoDatamodel.PromoCode{}).
			Where("id = ? AND usage_count < max_uses", id).
			UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		out.Applied = true

		if userID == "" {
			return nil
		}
		var c customerDatamodel.Customer
		err := tx.Select("id", "promo_code_id").Where("id = ?", userID).Take(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		// read before the update; gorm writes the new value back into the model
		previous := c.PromoCodeID
		if err := tx.Model(&customerDatamodel.Customer{ID: c.ID}).UpdateColumn("promo_code_id", id).Error; err != nil {
			return err
		}
		out.Linked = true
		out.PreviousPromoID = previous
		return nil
	})
	if err != nil {
		return promo.Redemption{}, err
	}
	return out, nil
}

func (r *PromoRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&promoDatamodel.PromoCode{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrPromoNotFound
	}
	return nil
}
