package repositories

import (
	"context"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByUserIDWithItems loads the user's cart with every item, its product
	// and the product's discounts.
	GetByUserIDWithItems(ctx context.Context, userID string) (*models.Cart, error)
	GetOrCreate(ctx context.Context, userID string) (*models.Cart, error)
	// AddItem inserts the product or merges quantity into the existing line.
	AddItem(ctx context.Context, cartID, productID string, quantity int) (*models.CartItem, error)
	FindItem(ctx context.Context, userID, productID string) (*models.CartItem, error)
	SetItemQuantity(ctx context.Context, itemID string, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
	Delete(ctx context.Context, cartID string) error
}

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func (r *GORMCartRepository) GetByUserIDWithItems(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Items.Product").
		Preload("Items.Product.Discounts").
		First(&cart, "user_id = ?", userID).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("cart for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// GetOrCreate inserts the cart unless one already exists for the user, then
// reads it back, so concurrent first calls converge on the same row.
func (r *GORMCartRepository) GetOrCreate(ctx context.Context, userID string) (*models.Cart, error) {
	db := r.db.WithContext(ctx)
	fresh := models.Cart{ID: uuid.New().String(), UserID: userID}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Omit("Items").Create(&fresh).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get or create cart for user %s: %w", userID, err)
	}

	var cart models.Cart
	if err := db.First(&cart, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart for user %s: %w", userID, err)
	}
	return &cart, nil
}

// AddItem is a single upsert on (cart_id, product_id); an existing line has
// quantity added in SQL rather than read and written back.
func (r *GORMCartRepository) AddItem(ctx context.Context, cartID, productID string, quantity int) (*models.CartItem, error) {
	db := r.db.WithContext(ctx)
	item := models.CartItem{
		ID:        uuid.New().String(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
			"updated_at": gorm.Expr("excluded.updated_at"),
		}),
	}).Omit("Product").Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	var stored models.CartItem
	if err := db.First(&stored, "cart_id = ? AND product_id = ?", cartID, productID).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart item: %w", err)
	}
	return &stored, nil
}

func (r *GORMCartRepository) FindItem(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ? AND cart_items.product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("cart item for product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return &item, nil
}

func (r *GORMCartRepository) SetItemQuantity(ctx context.Context, itemID string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", itemID).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item quantity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) RemoveItem(ctx context.Context, itemID string) error {
	res := r.db.WithContext(ctx).Delete(&models.CartItem{}, "id = ?", itemID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// Delete removes the cart and its items.
func (r *GORMCartRepository) Delete(ctx context.Context, cartID string) error {
	db := r.db.WithContext(ctx)
	if err := db.Delete(&models.CartItem{}, "cart_id = ?", cartID).Error; err != nil {
		return fmt.Errorf("failed to delete items of cart %s: %w", cartID, err)
	}
	res := db.Delete(&models.Cart{}, "id = ?", cartID)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart %s: %w", cartID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart %s: %w", cartID, ErrNotFound)
	}
	return nil
}
