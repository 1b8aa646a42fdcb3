package checkout

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// centPlaces is the precision every monetary amount is kept at.
const centPlaces = 2

// unitPricePlaces bounds the precision of a unit price derived from a line total.
const unitPricePlaces = 6

// ValidatePromocode checks the promocode rules against the discount-adjusted total.
func ValidatePromocode(promo *models.Promocode, orderTotal decimal.Decimal) error {
	if !promo.IsActive {
		return &PromoInvalidError{Code: promo.Code, Reason: PromoInactive}
	}
	if promo.UsedCount >= promo.MaxUsage {
		return &PromoInvalidError{Code: promo.Code, Reason: PromoUsageExhausted}
	}
	if orderTotal.LessThan(promo.MinOrderAmount) {
		return &PromoInvalidError{Code: promo.Code, Reason: PromoBelowMinimum}
	}
	return nil
}

// PromoDiscount is the amount a promocode takes off: its value, capped at the total.
func PromoDiscount(promo *models.Promocode, orderTotal decimal.Decimal) decimal.Decimal {
	return decimal.Min(promo.Value, orderTotal)
}

// AllocatePromo spreads discount across items in proportion to each line's
// share of the total. Every item but the last gets its share rounded down to
// the cent and capped at what is left; the last item takes the exact
// remainder, so the line totals drop by exactly discount.
//
// The input slice is not modified.
func AllocatePromo(items []PricedItem, discount decimal.Decimal) []PricedItem {
	total := SumLineTotals(items)
	if total.IsZero() || !discount.IsPositive() || len(items) == 0 {
		return items
	}
	discount = decimal.Min(discount, total)

	out := make([]PricedItem, len(items))
	copy(out, items)

	remaining := discount
	last := len(out) - 1
	for i := range out {
		if !remaining.IsPositive() {
			break
		}
		var share decimal.Decimal
		if i == last {
			share = remaining
		} else {
			share = discount.Mul(out[i].LineTotal).Div(total).RoundFloor(centPlaces)
			share = decimal.Min(share, remaining)
		}
		share = decimal.Min(share, out[i].LineTotal)
		out[i].LineTotal = out[i].LineTotal.Sub(share)
		remaining = remaining.Sub(share)
	}

	// Only reachable when the last line is smaller than the rounding slack;
	// the leftover cents go to the earliest lines that can still absorb them.
	for i := 0; remaining.IsPositive() && i < len(out); i++ {
		take := decimal.Min(remaining, out[i].LineTotal)
		out[i].LineTotal = out[i].LineTotal.Sub(take)
		remaining = remaining.Sub(take)
	}

	for i := range out {
		out[i].UnitPrice = unitPrice(out[i].LineTotal, out[i].Quantity)
	}
	return out
}

// unitPrice derives the effective unit price of a line; a zero quantity yields 0.
func unitPrice(lineTotal decimal.Decimal, quantity int) decimal.Decimal {
	if quantity <= 0 {
		return decimal.Zero
	}
	return lineTotal.DivRound(decimal.NewFromInt(int64(quantity)), unitPricePlaces)
}
