package checkout_test

import (
	"context"
	"testing"
	"time"

	"storefront/internal/database/dbtest"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx   context.Context
	store *repositories.GORMStore
}

func newFixture(t *testing.T) *fixture {
	return &fixture{
		ctx:   context.Background(),
		store: repositories.NewGORMStore(dbtest.OpenTestDB(t)),
	}
}

func (f *fixture) product(t *testing.T, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Product " + price, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, f.store.Products().Create(f.ctx, p))
	return p
}

func (f *fixture) discount(t *testing.T, productID, value string, start, end time.Time, active bool) {
	t.Helper()
	require.NoError(t, f.store.Discounts().Create(f.ctx, &models.Discount{
		ProductID: productID,
		Value:     decimal.RequireFromString(value),
		StartDate: start,
		EndDate:   end,
		IsActive:  active,
	}))
}

func (f *fixture) addToCart(t *testing.T, userID, productID string, quantity int) {
	t.Helper()
	cart, err := f.store.Carts().GetOrCreate(f.ctx, userID)
	require.NoError(t, err)
	_, err = f.store.Carts().AddItem(f.ctx, cart.ID, productID, quantity)
	require.NoError(t, err)
}

func (f *fixture) promo(t *testing.T, value, minOrder string, maxUsage, used int, active bool) *models.Promocode {
	t.Helper()
	p := &models.Promocode{
		Code:           "CODE-" + value + "-" + minOrder,
		Value:          decimal.RequireFromString(value),
		MinOrderAmount: decimal.RequireFromString(minOrder),
		MaxUsage:       maxUsage,
		UsedCount:      used,
		IsActive:       active,
	}
	require.NoError(t, f.store.Promocodes().Create(f.ctx, p))
	return p
}

func (f *fixture) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.store.Products().GetByID(f.ctx, productID)
	require.NoError(t, err)
	return p.Stock
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }
