package checkout

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// ValidateCart loads the cart with products and discounts and computes the
// undiscounted subtotal.
func ValidateCart(ctx context.Context, pc *ProcessingContext) error {
	cart, err := pc.Store.Carts().GetByUserIDWithItems(ctx, pc.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrEmptyCart
	}
	if err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return ErrEmptyCart
	}

	pc.Cart = cart
	pc.Subtotal = Subtotal(cart.Items)
	pc.Total = pc.Subtotal
	return nil
}

// ValidateStock fails fast when a line asks for more than the stock read with
// the cart. It never writes; ReserveCartStock is the authoritative guard.
func ValidateStock(_ context.Context, pc *ProcessingContext) error {
	if pc.Cart == nil {
		return ErrMissingStageOutput
	}
	for _, item := range pc.Cart.Items {
		if item.Product.Stock < item.Quantity {
			return &InsufficientStockError{
				ProductID: item.ProductID,
				Requested: item.Quantity,
				Available: item.Product.Stock,
			}
		}
	}
	return nil
}

// ApplyDiscounts prices each line with its best active discount.
func ApplyDiscounts(_ context.Context, pc *ProcessingContext) error {
	if pc.Cart == nil {
		return ErrMissingStageOutput
	}
	items, total := PriceCart(pc.Cart.Items, pc.Now)

	pc.PricedItems = items
	pc.DiscountTotal = pc.Subtotal.Sub(total)
	pc.PromoDiscount = decimal.Zero
	pc.Total = total
	return nil
}

// ApplyPromocode validates the requested promocode, if any, and spreads its
// discount over the priced lines.
func ApplyPromocode(ctx context.Context, pc *ProcessingContext) error {
	if pc.PricedItems == nil {
		return ErrMissingStageOutput
	}
	if pc.PromocodeCode == "" {
		return nil
	}

	promo, err := pc.Store.Promocodes().FindByCode(ctx, pc.PromocodeCode)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrPromoNotFound, pc.PromocodeCode)
	}
	if err != nil {
		return err
	}

	total := SumLineTotals(pc.PricedItems)
	if err := ValidatePromocode(promo, total); err != nil {
		return err
	}

	discount := PromoDiscount(promo, total)
	pc.PricedItems = AllocatePromo(pc.PricedItems, discount)
	pc.AppliedPromocode = promo
	pc.PromoDiscount = discount
	pc.Total = SumLineTotals(pc.PricedItems)
	return nil
}

// ReserveCartStock decrements stock for every cart line with a conditional update.
func ReserveCartStock(ctx context.Context, pc *ProcessingContext) error {
	if pc.Cart == nil {
		return ErrMissingStageOutput
	}
	return ReserveStock(ctx, pc.Store.Products(), pc.Cart.Items)
}
