package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DiscountRepository defines the interface for discount data access.
type DiscountRepository interface {
	GetByID(ctx context.Context, id string) (*models.Discount, error)
	Create(ctx context.Context, discount *models.Discount) error
	Update(ctx context.Context, discount *models.Discount) error
	Delete(ctx context.Context, id string) error
}

// GORMDiscountRepository is a GORM implementation of DiscountRepository.
type GORMDiscountRepository struct {
	db *gorm.DB
}

// NewGORMDiscountRepository creates a new instance of GORMDiscountRepository.
func NewGORMDiscountRepository(db *gorm.DB) *GORMDiscountRepository {
	return &GORMDiscountRepository{db: db}
}

func (r *GORMDiscountRepository) GetByID(ctx context.Context, id string) (*models.Discount, error) {
	var discount models.Discount
	if err := r.db.WithContext(ctx).First(&discount, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("discount with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get discount by ID %s: %w", id, err)
	}
	return &discount, nil
}

func (r *GORMDiscountRepository) Create(ctx context.Context, discount *models.Discount) error {
	if discount.ID == "" {
		discount.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(discount).Error; err != nil {
		return fmt.Errorf("failed to create discount: %w", err)
	}
	return nil
}

func (r *GORMDiscountRepository) Update(ctx context.Context, discount *models.Discount) error {
	res := r.db.WithContext(ctx).Model(&models.Discount{}).Where("id = ?", discount.ID).
		Select("product_id", "value", "start_date", "end_date", "is_active").Updates(discount)
	if res.Error != nil {
		return fmt.Errorf("failed to update discount: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("discount with ID %s: %w", discount.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMDiscountRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Discount{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete discount: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("discount with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
