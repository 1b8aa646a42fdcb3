package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService manages a user's cart ahead of checkout.
type CartService struct {
	store repositories.Store
}

// NewCartService creates a new CartService.
func NewCartService(store repositories.Store) *CartService {
	return &CartService{store: store}
}

// GetCart returns the user's cart, or an empty cart when none exists yet.
func (s *CartService) GetCart(ctx context.Context, userID string) (*models.Cart, error) {
	cart, err := s.store.Carts().GetByUserIDWithItems(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	return cart, err
}

// AddItem puts quantity units of productID in the cart, creating the cart on
// first use and merging with an existing line for the same product.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	var item *models.CartItem
	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		if _, err := tx.Products().GetByID(ctx, productID); err != nil {
			return err
		}
		cart, err := tx.Carts().GetOrCreate(ctx, userID)
		if err != nil {
			return err
		}
		item, err = tx.Carts().AddItem(ctx, cart.ID, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemQuantity sets the quantity of an existing line.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	item, err := s.store.Carts().FindItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().SetItemQuantity(ctx, item.ID, quantity); err != nil {
		return nil, err
	}
	item.Quantity = quantity
	return item, nil
}

// RemoveItem deletes the line for productID from the user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*models.CartItem, error) {
	item, err := s.store.Carts().FindItem(ctx, userID, productID)
	if err != nil {
		return nil, err
	}
	if err := s.store.Carts().RemoveItem(ctx, item.ID); err != nil {
		return nil, err
	}
	return item, nil
}

// ClearCart deletes the user's cart and returns its id.
func (s *CartService) ClearCart(ctx context.Context, userID string) (string, error) {
	cart, err := s.store.Carts().GetByUserIDWithItems(ctx, userID)
	if err != nil {
		return "", err
	}
	if err := s.store.Carts().Delete(ctx, cart.ID); err != nil {
		return "", err
	}
	return cart.ID, nil
}
