package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/frahmantamala/saas-admin/internal"
	"github.com/frahmantamala/saas-admin/internal/auth"
	userDatamodel "github.com/frahmantamala/saas-admin/internal/core/datamodel/dashboarduser"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) auth.UserRepository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, user *userDatamodel.DashboardUser) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrAccountEmailTaken
	}
	return err
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*userDatamodel.DashboardUser, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*userDatamodel.DashboardUser, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*userDatamodel.DashboardUser, error) {
	var user userDatamodel.DashboardUser
	if err := r.db.WithContext(ctx).Where(query, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrAccountNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) UpdateRefreshTokenHash(ctx context.Context, id string, hash *string) error {
	res := r.db.WithContext(ctx).
		Model(&userDatamodel.DashboardUser{}).
		Where("id = ?", id).
		Update("refresh_token_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return internal.ErrAccountNotFound
	}
	return nil
}
