package services_test

import (
	"context"
	"sync"
	"testing"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// interleavingStore moves an order to `to` immediately before every status
// write the service makes, as a writer that committed between the service's
// read and its write would.
type interleavingStore struct {
	repositories.Store
	to models.OrderStatus
}

func (s *interleavingStore) Orders() repositories.OrderRepository {
	return &interleavingOrders{OrderRepository: s.Store.Orders(), to: s.to}
}

func (s *interleavingStore) WithinTransaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	return s.Store.WithinTransaction(ctx, func(tx repositories.Store) error {
		return fn(&interleavingStore{Store: tx, to: s.to})
	})
}

type interleavingOrders struct {
	repositories.OrderRepository
	to models.OrderStatus
}

func (r *interleavingOrders) TransitionStatus(ctx context.Context, id string, from, to models.OrderStatus) (int64, error) {
	if _, err := r.OrderRepository.TransitionStatus(ctx, id, from, r.to); err != nil {
		return 0, err
	}
	return r.OrderRepository.TransitionStatus(ctx, id, from, to)
}

func TestOrderService_ChangeOrderStatusLosesToConcurrentWrite(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusPaid)
	store := &interleavingStore{Store: f.store, to: models.OrderStatusCancelled}
	service := services.NewOrderService(store, nil, nil)

	_, err := service.ChangeOrderStatus(f.ctx, order.ID, models.OrderStatusShipped)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.Equal(t, models.OrderStatusCancelled, orderStatus(t, f, order.ID))
}

func TestPaymentService_CallbackDoesNotResurrectCancelledOrder(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusPending)
	store := &interleavingStore{Store: f.store, to: models.OrderStatusCancelled}
	notifier := &recordingNotifier{}
	service := services.NewPaymentService(store, services.ManualGateway{}, notifier)

	err := service.HandleCallback(f.ctx, services.PaymentCallback{
		OrderID: order.ID, UserID: "user-1", Status: services.PaymentStatusSucceeded,
	})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	assert.Empty(t, notifier.types())
	assert.Equal(t, models.OrderStatusCancelled, orderStatus(t, f, order.ID))
}

func TestPaymentService_CallbackRacingAnotherConfirmation(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusPending)
	store := &interleavingStore{Store: f.store, to: models.OrderStatusPaid}
	notifier := &recordingNotifier{}
	service := services.NewPaymentService(store, services.ManualGateway{}, notifier)

	err := service.HandleCallback(f.ctx, services.PaymentCallback{
		OrderID: order.ID, UserID: "user-1", Status: services.PaymentStatusSucceeded,
	})
	require.NoError(t, err)
	assert.Equal(t, []events.PaymentEventType{events.PaymentSucceeded}, notifier.types())
	assert.Equal(t, models.OrderStatusPaid, orderStatus(t, f, order.ID))
}

func TestPaymentService_InitiatePaymentLosesToConcurrentCancel(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusCreated)
	store := &interleavingStore{Store: f.store, to: models.OrderStatusCancelled}
	gateway := new(MockGateway)
	service := services.NewPaymentService(store, gateway, &recordingNotifier{})

	_, err := service.InitiatePayment(f.ctx, "user-1", order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)
	gateway.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	assert.Equal(t, models.OrderStatusCancelled, orderStatus(t, f, order.ID))
}

func TestPaymentService_ConcurrentInitiateOpensOnePayment(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusCreated)
	gateway := new(MockGateway)
	gateway.On("CreatePayment", mock.Anything, mock.Anything).Return(&services.PaymentIntent{Provider: "test", Reference: "ref"}, nil)
	service := services.NewPaymentService(f.store, gateway, &recordingNotifier{})

	const callers = 6
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.InitiatePayment(f.ctx, "user-1", order.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, services.ErrInvalidTransition)
	}
	assert.Equal(t, 1, succeeded)
	gateway.AssertNumberOfCalls(t, "CreatePayment", 1)
	assert.Equal(t, models.OrderStatusPending, orderStatus(t, f, order.ID))
}
