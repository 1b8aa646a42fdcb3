package checkout

import (
	"fmt"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// Assemble builds the order aggregate persisted at the end of checkout. It
// fails only when userID is empty or there are no items, which a successful
// pipeline run never produces.
func Assemble(userID string, total decimal.Decimal, items []PricedItem, promo *models.Promocode) (*models.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required to build an order", ErrAssemblyInvariant)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: at least one order item is required", ErrAssemblyInvariant)
	}

	order := &models.Order{
		UserID:      userID,
		TotalAmount: total,
		Status:      models.OrderStatusCreated,
		Items:       make([]models.OrderItem, len(items)),
	}
	for i, item := range items {
		order.Items[i] = models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
			LineTotal: item.LineTotal,
			Position:  i,
		}
	}
	if promo != nil {
		id := promo.ID
		order.PromocodeID = &id
	}
	return order, nil
}

// AssembleFrom assembles the order from a finished ProcessingContext.
func AssembleFrom(pc *ProcessingContext) (*models.Order, error) {
	return Assemble(pc.UserID, pc.Total, pc.PricedItems, pc.AppliedPromocode)
}
