package dashboarduser

import (
	"time"

	"gorm.io/gorm"
)

// DashboardUser is an operator account that can sign in to the dashboard.
type DashboardUser struct {
	ID               string         `gorm:"column:id;type:uuid;primaryKey"`
	Email            string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash     string         `gorm:"column:password_hash;not null"`
	Role             string         `gorm:"column:role;not null"`
	Name             string         `gorm:"column:name;not null"`
	RefreshTokenHash *string        `gorm:"column:refresh_token_hash"`
	IsActive         bool           `gorm:"column:is_active;not null"`
	CreatedAt        time.Time      `gorm:"column:created_at;autoCreateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (DashboardUser) TableName() string {
	return "dashboard_users"
}
