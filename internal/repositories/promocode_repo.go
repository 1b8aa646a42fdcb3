package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PromocodeRepository defines the interface for promo code data access.
type PromocodeRepository interface {
	FindByCode(ctx context.Context, code string) (*models.Promocode, error)
	GetByID(ctx context.Context, id string) (*models.Promocode, error)
	Create(ctx context.Context, promocode *models.Promocode) error
	Delete(ctx context.Context, id string) error
	// IncrementUsedCount bumps used_count by one while it is still below
	// max_usage and returns the number of rows affected.
	IncrementUsedCount(ctx context.Context, id string) (int64, error)
}

// GORMPromocodeRepository is a GORM implementation of PromocodeRepository.
type GORMPromocodeRepository struct {
	db *gorm.DB
}

// NewGORMPromocodeRepository creates a new instance of GORMPromocodeRepository.
func NewGORMPromocodeRepository(db *gorm.DB) *GORMPromocodeRepository {
	return &GORMPromocodeRepository{db: db}
}

func (r *GORMPromocodeRepository) FindByCode(ctx context.Context, code string) (*models.Promocode, error) {
	var promo models.Promocode
	if err := r.db.WithContext(ctx).First(&promo, "code = ?", code).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("promocode %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get promocode %s: %w", code, err)
	}
	return &promo, nil
}

func (r *GORMPromocodeRepository) GetByID(ctx context.Context, id string) (*models.Promocode, error) {
	var promo models.Promocode
	if err := r.db.WithContext(ctx).First(&promo, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("promocode with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get promocode by ID %s: %w", id, err)
	}
	return &promo, nil
}

func (r *GORMPromocodeRepository) Create(ctx context.Context, promocode *models.Promocode) error {
	if promocode.ID == "" {
		promocode.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(promocode).Error; err != nil {
		return fmt.Errorf("failed to create promocode: %w", err)
	}
	return nil
}

func (r *GORMPromocodeRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Promocode{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete promocode: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("promocode with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMPromocodeRepository) IncrementUsedCount(ctx context.Context, id string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Promocode{}).
		Where("id = ? AND used_count < max_usage", id).
		Update("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment usage of promocode %s: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}
