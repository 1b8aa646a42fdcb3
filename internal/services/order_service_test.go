package services_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderEventPublisher struct {
	mock.Mock
}

func (m *MockOrderEventPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func TestOrderService_CreateOrderFromCart(t *testing.T) {
	f := newStoreFixture(t)
	p := f.product(t, "Headphones", "200", 4)
	promo := f.promo(t, "SAVE50", "50", "0", 5)
	f.addToCart(t, "user-1", p.ID, 1)

	publisher := new(MockOrderEventPublisher)
	publisher.On("PublishOrderCreated", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Once()
	service := services.NewOrderService(f.store, nil, publisher)

	order, err := service.CreateOrderFromCart(f.ctx, "user-1", promo.Code)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCreated, order.Status)
	assert.Equal(t, "150.00", order.TotalAmount.StringFixed(2))
	require.NotNil(t, order.PromocodeID)
	assert.Equal(t, promo.ID, *order.PromocodeID)
	assert.Equal(t, 3, f.stock(t, p.ID))
	assert.Equal(t, 1, f.usedCount(t, promo.ID))

	_, err = f.store.Carts().GetByUserIDWithItems(f.ctx, "user-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	stored, err := service.GetUserOrderByID(f.ctx, "user-1", order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, "150.00", stored.Items[0].LineTotal.StringFixed(2))
	publisher.AssertExpectations(t)
}

func TestOrderService_LineTotalsMatchOrderTotal(t *testing.T) {
	f := newStoreFixture(t)
	a := f.product(t, "Cable", "9.99", 10)
	b := f.product(t, "Charger", "24.50", 10)
	c := f.product(t, "Case", "13.00", 10)
	promo := f.promo(t, "TEN", "10", "0", 5)
	f.addToCart(t, "user-1", a.ID, 3)
	f.addToCart(t, "user-1", b.ID, 1)
	f.addToCart(t, "user-1", c.ID, 2)

	order, err := services.NewOrderService(f.store, nil, nil).CreateOrderFromCart(f.ctx, "user-1", promo.Code)
	require.NoError(t, err)

	sum := order.Items[0].LineTotal
	for _, item := range order.Items[1:] {
		sum = sum.Add(item.LineTotal)
	}
	assert.Equal(t, "70.47", order.TotalAmount.StringFixed(2))
	assert.True(t, sum.Equal(order.TotalAmount))
}

func TestOrderService_PromoBelowMinimumChangesNothing(t *testing.T) {
	f := newStoreFixture(t)
	p := f.product(t, "Headphones", "200", 4)
	promo := f.promo(t, "BIG", "50", "300", 5)
	f.addToCart(t, "user-1", p.ID, 1)

	_, err := services.NewOrderService(f.store, nil, nil).CreateOrderFromCart(f.ctx, "user-1", promo.Code)

	var invalid *checkout.PromoInvalidError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, checkout.PromoBelowMinimum, invalid.Reason)
	assert.Equal(t, 4, f.stock(t, p.ID))
	assert.Equal(t, 0, f.usedCount(t, promo.ID))

	cart, err := f.store.Carts().GetByUserIDWithItems(f.ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestOrderService_FailureAfterReservationRollsBack(t *testing.T) {
	f := newStoreFixture(t)
	p := f.product(t, "Lamp", "30", 2)
	f.addToCart(t, "user-1", p.ID, 2)

	stageErr := errors.New("late failure")
	stages := append(checkout.DefaultStages(), checkout.Stage{
		Name: "fail",
		Run:  func(context.Context, *checkout.ProcessingContext) error { return stageErr },
	})
	service := services.NewOrderService(f.store, checkout.NewPipeline(stages...), nil)

	_, err := service.CreateOrderFromCart(f.ctx, "user-1", "")
	assert.ErrorIs(t, err, stageErr)

	assert.Equal(t, 2, f.stock(t, p.ID))
	cart, err := f.store.Carts().GetByUserIDWithItems(f.ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	_, err = service.GetUserOrders(f.ctx, "user-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderService_PromoTakenConcurrentlyRollsBack(t *testing.T) {
	f := newStoreFixture(t)
	p := f.product(t, "Lamp", "30", 2)
	promo := f.promo(t, "ONCE", "5", "0", 1)
	f.addToCart(t, "user-1", p.ID, 1)

	// Another checkout redeems the last use between validation and commit.
	stages := append(checkout.DefaultStages(), checkout.Stage{
		Name: "competing_redemption",
		Run: func(ctx context.Context, pc *checkout.ProcessingContext) error {
			_, err := pc.Store.Promocodes().IncrementUsedCount(ctx, pc.AppliedPromocode.ID)
			return err
		},
	})
	service := services.NewOrderService(f.store, checkout.NewPipeline(stages...), nil)

	_, err := service.CreateOrderFromCart(f.ctx, "user-1", promo.Code)

	var invalid *checkout.PromoInvalidError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, checkout.PromoUsageExhausted, invalid.Reason)
	assert.Equal(t, 2, f.stock(t, p.ID))
	assert.Equal(t, 0, f.usedCount(t, promo.ID))
}

func TestOrderService_PublisherFailureDoesNotFailCheckout(t *testing.T) {
	f := newStoreFixture(t)
	p := f.product(t, "Lamp", "30", 2)
	f.addToCart(t, "user-1", p.ID, 1)

	publisher := new(MockOrderEventPublisher)
	publisher.On("PublishOrderCreated", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	order, err := services.NewOrderService(f.store, nil, publisher).CreateOrderFromCart(f.ctx, "user-1", "")
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	publisher.AssertExpectations(t)
}

func TestOrderService_GetUserOrders(t *testing.T) {
	f := newStoreFixture(t)
	service := services.NewOrderService(f.store, nil, nil)

	_, err := service.GetUserOrders(f.ctx, "user-1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mine := f.order(t, "user-1", models.OrderStatusCreated)
	f.order(t, "user-2", models.OrderStatusCreated)

	orders, err := service.GetUserOrders(f.ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, mine.ID, orders[0].ID)

	_, err = service.GetUserOrderByID(f.ctx, "user-2", mine.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestOrderService_ChangeOrderStatus(t *testing.T) {
	f := newStoreFixture(t)
	service := services.NewOrderService(f.store, nil, nil)
	order := f.order(t, "user-1", models.OrderStatusPaid)

	_, err := service.ChangeOrderStatus(f.ctx, order.ID, "LOST")
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = service.ChangeOrderStatus(f.ctx, order.ID, models.OrderStatusCreated)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	updated, err := service.ChangeOrderStatus(f.ctx, order.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)

	_, err = service.ChangeOrderStatus(f.ctx, "missing", models.OrderStatusShipped)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
