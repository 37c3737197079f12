package expense

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Expense struct {
	ID          string          `gorm:"column:id;type:uuid;primaryKey"`
	Type        string          `gorm:"column:type;not null"`
	Merchant    string          `gorm:"column:merchant;not null"`
	ExpenseDate time.Time       `gorm:"column:expense_date;type:date;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	Description string          `gorm:"column:description"`
	Status      string          `gorm:"column:status;not null;index"`
	ProductLink *string         `gorm:"column:product_link"`
	InvoiceURL  *string         `gorm:"column:invoice_url"`
	ExpiryDate  *time.Time      `gorm:"column:expiry_date;type:date"`
	CreatedBy   *string         `gorm:"column:created_by;type:uuid"`
	ApprovedBy  *string         `gorm:"column:approved_by;type:uuid"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}

func (Expense) TableName() string {
	return "expenses"
}
