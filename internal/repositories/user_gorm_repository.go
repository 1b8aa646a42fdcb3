package repositories

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("user with email %s: %w", user.Email, ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email", email)
}

// GetByGoogleID retrieves a user provisioned through Google sign-in.
func (r *GORMUserRepository) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return r.first(ctx, "google_id", googleID)
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.first(ctx, "id", id)
}

func (r *GORMUserRepository) first(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, column+" = ?", value).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user with %s %s: %w", column, value, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by %s %s: %w", column, value, err)
	}
	return &user, nil
}

func (r *GORMUserRepository) SetRefreshToken(ctx context.Context, userID, tokenID string, expiresAt *time.Time) error {
	updates := map[string]interface{}{"refresh_token_id": nil, "refresh_token_expires_at": nil}
	if tokenID != "" {
		updates["refresh_token_id"] = tokenID
		updates["refresh_token_expires_at"] = expiresAt
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to store refresh token for user %s: %w", userID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user with id %s: %w", userID, ErrNotFound)
	}
	return nil
}

func (r *GORMUserRepository) RotateRefreshToken(ctx context.Context, userID, currentID, nextID string, expiresAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND refresh_token_id = ?", userID, currentID).
		Updates(map[string]interface{}{
			"refresh_token_id":         nextID,
			"refresh_token_expires_at": expiresAt,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to rotate refresh token for user %s: %w", userID, res.Error)
	}
	return res.RowsAffected, nil
}
