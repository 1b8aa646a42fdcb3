package checkout_test

import (
	"testing"
	"time"

	"storefront/internal/checkout"
	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBestDiscount_WindowIsHalfOpen(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)
	discounts := []models.Discount{{Value: money("10"), StartDate: start, EndDate: end, IsActive: true}}

	assert.Equal(t, "0.00", checkout.BestDiscount(discounts, start.Add(-time.Second)).StringFixed(2))
	assert.Equal(t, "10.00", checkout.BestDiscount(discounts, start).StringFixed(2))
	assert.Equal(t, "10.00", checkout.BestDiscount(discounts, end.Add(-time.Nanosecond)).StringFixed(2))
	assert.Equal(t, "0.00", checkout.BestDiscount(discounts, end).StringFixed(2))
}

func TestBestDiscount_LargestActiveWinsWithoutStacking(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := func(v string, active bool) models.Discount {
		return models.Discount{Value: money(v), StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), IsActive: active}
	}

	best := checkout.BestDiscount([]models.Discount{window("5", true), window("15", false), window("12", true)}, now)
	assert.Equal(t, "12.00", best.StringFixed(2))
}

func TestPriceItem(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	active := models.Discount{Value: money("10"), StartDate: now.Add(-time.Hour), EndDate: now.Add(time.Hour), IsActive: true}

	t.Run("discounted", func(t *testing.T) {
		item := checkout.PriceItem(models.Product{ID: "p1", Price: money("100"), Discounts: []models.Discount{active}}, 2, now)
		assert.Equal(t, "90.00", item.UnitPrice.StringFixed(2))
		assert.Equal(t, "180.00", item.LineTotal.StringFixed(2))
		assert.Equal(t, 2, item.Quantity)
	})

	t.Run("discount larger than price clamps at zero", func(t *testing.T) {
		item := checkout.PriceItem(models.Product{ID: "p2", Price: money("5"), Discounts: []models.Discount{active}}, 3, now)
		assert.True(t, item.UnitPrice.IsZero())
		assert.True(t, item.LineTotal.IsZero())
	})
}

func TestPriceCart_TotalsMatchLines(t *testing.T) {
	now := time.Now()
	items := []models.CartItem{
		{ProductID: "a", Quantity: 3, Product: models.Product{ID: "a", Price: money("19.99")}},
		{ProductID: "b", Quantity: 1, Product: models.Product{ID: "b", Price: money("0.01")}},
	}

	priced, total := checkout.PriceCart(items, now)

	assert.Len(t, priced, 2)
	assert.Equal(t, "59.98", total.StringFixed(2))
	assert.True(t, total.Equal(checkout.SumLineTotals(priced)))
	assert.True(t, total.Equal(checkout.Subtotal(items)))
}
