package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DeliveryRepository defines the interface for delivery data access.
type DeliveryRepository interface {
	FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error)
	Create(ctx context.Context, delivery *models.Delivery) error
}

// GORMDeliveryRepository is a GORM implementation of DeliveryRepository.
type GORMDeliveryRepository struct {
	db *gorm.DB
}

// NewGORMDeliveryRepository creates a new instance of GORMDeliveryRepository.
func NewGORMDeliveryRepository(db *gorm.DB) *GORMDeliveryRepository {
	return &GORMDeliveryRepository{db: db}
}

func (r *GORMDeliveryRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.WithContext(ctx).First(&delivery, "order_id = ?", orderID).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("delivery for order %s: %w", orderID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get delivery for order %s: %w", orderID, err)
	}
	return &delivery, nil
}

func (r *GORMDeliveryRepository) Create(ctx context.Context, delivery *models.Delivery) error {
	if delivery.ID == "" {
		delivery.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(delivery).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("delivery for order %s: %w", delivery.OrderID, ErrConflict)
		}
		return fmt.Errorf("failed to create delivery for order %s: %w", delivery.OrderID, err)
	}
	return nil
}
