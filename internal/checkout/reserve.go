package checkout

import (
	"context"
	"fmt"

	"storefront/internal/models"
)

// StockDecrementer is the one write path allowed to touch stock.
type StockDecrementer interface {
	DecrementStockIfAvailable(ctx context.Context, productID string, quantity int) (int64, error)
}

// ReserveStock decrements stock for every line, stopping at the first line
// whose conditional update matches no row. Earlier decrements are undone by
// the surrounding transaction, not here.
func ReserveStock(ctx context.Context, products StockDecrementer, items []models.CartItem) error {
	for _, item := range items {
		affected, err := products.DecrementStockIfAvailable(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return fmt.Errorf("reserve product %s: %w", item.ProductID, err)
		}
		if affected == 0 {
			return &ReservationConflictError{ProductID: item.ProductID, Quantity: item.Quantity}
		}
	}
	return nil
}
