package models

import "time"

// DeliveryMethod is how a paid order reaches the customer.
type DeliveryMethod string

const (
	DeliveryMethodCourier DeliveryMethod = "COURIER"
	DeliveryMethodPickup  DeliveryMethod = "PICKUP"
	DeliveryMethodPost    DeliveryMethod = "POST"
)

// Delivery is created at most once per order, after payment succeeds.
type Delivery struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID   string         `json:"order_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Address   string         `json:"address"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Method    DeliveryMethod `json:"method" gorm:"type:varchar(20)"`
	CreatedAt time.Time      `json:"created_at"`
}
