package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Promocode is a global, usage-capped flat discount applied at checkout.
type Promocode struct {
	ID             string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Code           string          `json:"code" gorm:"uniqueIndex;type:varchar(64);not null"`
	Value          decimal.Decimal `json:"value" gorm:"type:decimal(12,2);not null"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount" gorm:"type:decimal(12,2);not null"`
	MaxUsage       int             `json:"max_usage" gorm:"not null"`
	UsedCount      int             `json:"used_count" gorm:"not null;default:0"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
