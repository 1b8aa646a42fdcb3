package repositories

import (
	"context"
	"time"

	"storefront/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// SetRefreshToken records the refresh token the user may present next.
	// An empty tokenID clears it.
	SetRefreshToken(ctx context.Context, userID, tokenID string, expiresAt *time.Time) error
	// RotateRefreshToken replaces currentID with nextID only while currentID is
	// still the recorded token. It returns the number of rows affected.
	RotateRefreshToken(ctx context.Context, userID, currentID, nextID string, expiresAt time.Time) (int64, error)
}
