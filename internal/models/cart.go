package models

import "time"

// Cart is owned by exactly one user and is deleted once it becomes an order.
type Cart struct {
	ID        string     `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string     `json:"user_id" gorm:"uniqueIndex;type:varchar(36);not null"`
	Items     []CartItem `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartItem pairs a product with a quantity inside a cart.
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CartID    string    `json:"cart_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36);not null"`
	ProductID string    `json:"product_id" gorm:"uniqueIndex:idx_cart_product;type:varchar(36);not null"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Product   Product   `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
