package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetForUser(ctx context.Context, userID, id string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	// TransitionStatus moves the order from one status to another as a single
	// conditional write (WHERE id = ? AND status = from). It returns the number
	// of rows affected; 0 means the order is missing or no longer in from.
	TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (int64, error)
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") })
}

// Create inserts the order together with its items.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := preloadItems(r.db.WithContext(ctx)).First(&order, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) GetForUser(ctx context.Context, userID, id string) (*models.Order, error) {
	var order models.Order
	err := preloadItems(r.db.WithContext(ctx)).First(&order, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("order with ID %s for user %s: %w", id, userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := preloadItems(r.db.WithContext(ctx)).Where("user_id = ?", userID).Order("created_at").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to move order %s from %s to %s: %w", id, from, to, res.Error)
	}
	return res.RowsAffected, nil
}
