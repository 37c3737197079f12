package salesperson

import (
	"time"

	"gorm.io/gorm"
)

type SalesPerson struct {
	ID        string         `gorm:"column:id;type:uuid;primaryKey"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Active    bool           `gorm:"column:active;not null"`
	JoinedOn  time.Time      `gorm:"column:joined_on;type:date"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

func (SalesPerson) TableName() string {
	return "sales_people"
}

// SalesPersonWithCount is the read model for roster listings.
type SalesPersonWithCount struct {
	SalesPerson
	OnboardedCount int64 `gorm:"column:onboarded_count"`
}
