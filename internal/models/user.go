package models

import "time"

// Role controls access to administrative endpoints.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// AuthProvider identifies how a user account was provisioned.
type AuthProvider string

const (
	ProviderEmail  AuthProvider = "email"
	ProviderGoogle AuthProvider = "google"
)

// User represents a user of the store.
type User struct {
	ID        string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email     string       `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string       `json:"-" gorm:"type:varchar(255)"` // Empty for federated accounts
	GoogleID  *string      `json:"-" gorm:"uniqueIndex;type:varchar(64)"`
	FirstName string       `json:"first_name"`
	LastName  string       `json:"last_name"`
	Address   string       `json:"address"`
	Phone     string       `json:"phone"`
	Provider  AuthProvider `json:"provider" gorm:"type:varchar(20)"`
	Role      Role         `json:"role" gorm:"type:varchar(20);default:CUSTOMER"`
	// RefreshTokenID is the jti of the one refresh token currently honoured.
	RefreshTokenID        *string    `json:"-" gorm:"type:varchar(36)"`
	RefreshTokenExpiresAt *time.Time `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
