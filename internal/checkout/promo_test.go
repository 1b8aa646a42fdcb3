package checkout_test

import (
	"errors"
	"math/rand"
	"testing"

	"storefront/internal/checkout"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePromocode(t *testing.T) {
	tests := []struct {
		name   string
		promo  models.Promocode
		total  string
		reason checkout.PromoInvalidReason
	}{
		{"inactive", models.Promocode{Code: "A", MaxUsage: 5, MinOrderAmount: money("0")}, "100", checkout.PromoInactive},
		{"usage exhausted", models.Promocode{Code: "B", IsActive: true, MaxUsage: 2, UsedCount: 2, MinOrderAmount: money("0")}, "100", checkout.PromoUsageExhausted},
		{"below minimum", models.Promocode{Code: "C", IsActive: true, MaxUsage: 5, MinOrderAmount: money("300")}, "200", checkout.PromoBelowMinimum},
		{"valid at exact minimum", models.Promocode{Code: "D", IsActive: true, MaxUsage: 5, MinOrderAmount: money("200")}, "200", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkout.ValidatePromocode(&tt.promo, money(tt.total))
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *checkout.PromoInvalidError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.reason, invalid.Reason)
			assert.ErrorIs(t, err, checkout.ErrPromoInvalid)
		})
	}
}

func TestPromoDiscount_CappedAtTotal(t *testing.T) {
	promo := &models.Promocode{Value: money("50")}
	assert.Equal(t, "50.00", checkout.PromoDiscount(promo, money("200")).StringFixed(2))
	assert.Equal(t, "30.00", checkout.PromoDiscount(promo, money("30")).StringFixed(2))
}

func priced(lines ...string) []checkout.PricedItem {
	items := make([]checkout.PricedItem, len(lines))
	for i, l := range lines {
		items[i] = checkout.PricedItem{ProductID: string(rune('a' + i)), Quantity: 1, UnitPrice: money(l), LineTotal: money(l)}
	}
	return items
}

func TestAllocatePromo_SingleLine(t *testing.T) {
	out := checkout.AllocatePromo([]checkout.PricedItem{
		{ProductID: "p", Quantity: 1, UnitPrice: money("200"), LineTotal: money("200")},
	}, money("50"))

	require.Len(t, out, 1)
	assert.Equal(t, "150.00", out[0].LineTotal.StringFixed(2))
	assert.Equal(t, "150.00", out[0].UnitPrice.StringFixed(2))
}

func TestAllocatePromo_EvenSplitRemainderToLast(t *testing.T) {
	out := checkout.AllocatePromo(priced("10", "10", "10"), money("10"))

	assert.Equal(t, "6.67", out[0].LineTotal.StringFixed(2))
	assert.Equal(t, "6.67", out[1].LineTotal.StringFixed(2))
	assert.Equal(t, "6.66", out[2].LineTotal.StringFixed(2))
	assert.Equal(t, "20.00", checkout.SumLineTotals(out).StringFixed(2))
}

func TestAllocatePromo_LeftoverSpillsToEarliestLine(t *testing.T) {
	out := checkout.AllocatePromo(priced("10.00", "10.00", "0.01"), money("15"))

	assert.Equal(t, "2.50", out[0].LineTotal.StringFixed(2))
	assert.Equal(t, "2.51", out[1].LineTotal.StringFixed(2))
	assert.Equal(t, "0.00", out[2].LineTotal.StringFixed(2))
	assert.Equal(t, "5.01", checkout.SumLineTotals(out).StringFixed(2))
}

func TestAllocatePromo_DoesNotModifyInput(t *testing.T) {
	in := priced("40", "60")
	_ = checkout.AllocatePromo(in, money("25"))

	assert.Equal(t, "40.00", in[0].LineTotal.StringFixed(2))
	assert.Equal(t, "60.00", in[1].LineTotal.StringFixed(2))
}

func TestAllocatePromo_ZeroQuantityLineHasZeroUnitPrice(t *testing.T) {
	in := []checkout.PricedItem{
		{ProductID: "a", Quantity: 0, LineTotal: money("0")},
		{ProductID: "b", Quantity: 3, UnitPrice: money("10"), LineTotal: money("30")},
	}
	out := checkout.AllocatePromo(in, money("3"))

	assert.True(t, out[0].UnitPrice.IsZero())
	assert.Equal(t, "9.000000", out[1].UnitPrice.StringFixed(6))
}

func TestAllocatePromo_ExactSumProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for run := 0; run < 500; run++ {
		n := 1 + rng.Intn(6)
		items := make([]checkout.PricedItem, n)
		for i := range items {
			qty := 1 + rng.Intn(5)
			unit := decimal.New(int64(1+rng.Intn(50000)), -2)
			items[i] = checkout.PricedItem{
				ProductID: string(rune('a' + i)),
				Quantity:  qty,
				UnitPrice: unit,
				LineTotal: unit.Mul(decimal.NewFromInt(int64(qty))),
			}
		}
		total := checkout.SumLineTotals(items)
		discount := decimal.New(int64(rng.Intn(int(total.Shift(2).IntPart())+100)), -2)

		out := checkout.AllocatePromo(items, discount)

		want := total.Sub(decimal.Min(discount, total))
		require.True(t, want.Equal(checkout.SumLineTotals(out)),
			"run %d: total %s discount %s got %s", run, total, discount, checkout.SumLineTotals(out))
		for i, item := range out {
			require.False(t, item.LineTotal.IsNegative(), "run %d line %d negative", run, i)
			require.True(t, item.LineTotal.LessThanOrEqual(items[i].LineTotal), "run %d line %d grew", run, i)
		}
	}
}
