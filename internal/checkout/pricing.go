package checkout

import (
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// PricedItem is one line of the order after pricing.
type PricedItem struct {
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// BestDiscount returns the greatest value among discounts applying at now,
// or zero when none applies. Discounts never stack.
func BestDiscount(discounts []models.Discount, now time.Time) decimal.Decimal {
	best := decimal.Zero
	for _, d := range discounts {
		if d.AppliesAt(now) && d.Value.GreaterThan(best) {
			best = d.Value
		}
	}
	return best
}

// PriceItem computes the discounted unit price and line total of a product.
func PriceItem(product models.Product, quantity int, now time.Time) PricedItem {
	unit := decimal.Max(product.Price.Sub(BestDiscount(product.Discounts, now)), decimal.Zero)
	return PricedItem{
		ProductID: product.ID,
		Quantity:  quantity,
		UnitPrice: unit,
		LineTotal: unit.Mul(decimal.NewFromInt(int64(quantity))),
	}
}

// PriceCart prices every cart line in order and returns the lines with their sum.
func PriceCart(items []models.CartItem, now time.Time) ([]PricedItem, decimal.Decimal) {
	priced := make([]PricedItem, 0, len(items))
	total := decimal.Zero
	for _, item := range items {
		p := PriceItem(item.Product, item.Quantity, now)
		priced = append(priced, p)
		total = total.Add(p.LineTotal)
	}
	return priced, total
}

// Subtotal is the undiscounted sum of price * quantity over the cart.
func Subtotal(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return sum
}

// SumLineTotals adds up the line totals of items.
func SumLineTotals(items []PricedItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.LineTotal)
	}
	return sum
}
