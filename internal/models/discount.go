package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount is a time-windowed price reduction on a single product.
type Discount struct {
	ID        string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36);index;not null"`
	Value     decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	IsActive  bool            `json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AppliesAt reports whether the discount reduces price at the given instant.
// The window is half-open: [StartDate, EndDate).
func (d Discount) AppliesAt(now time.Time) bool {
	return d.IsActive && !now.Before(d.StartDate) && now.Before(d.EndDate)
}
