package services_test

import (
	"context"
	"errors"
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

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePayment(ctx context.Context, req services.PaymentRequest) (*services.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PaymentIntent), args.Error(1)
}

// recordingNotifier keeps every event it is asked to publish.
type recordingNotifier struct {
	mu     sync.Mutex
	events []events.PaymentEvent
}

func (n *recordingNotifier) Notify(_ context.Context, event events.PaymentEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []events.PaymentEventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]events.PaymentEventType, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

func orderStatus(t *testing.T, f *storeFixture, id string) models.OrderStatus {
	t.Helper()
	o, err := f.store.Orders().GetByID(f.ctx, id)
	require.NoError(t, err)
	return o.Status
}

func TestPaymentService_InitiatePayment(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusCreated)

	gateway := new(MockGateway)
	gateway.On("CreatePayment", mock.Anything, mock.MatchedBy(func(req services.PaymentRequest) bool {
		return req.OrderID == order.ID && req.Amount.StringFixed(2) == "42.50"
	})).Return(&services.PaymentIntent{Provider: "test", Reference: "ref-1"}, nil).Once()
	service := services.NewPaymentService(f.store, gateway, &recordingNotifier{})

	intent, err := service.InitiatePayment(f.ctx, "user-1", order.ID)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", intent.Reference)
	assert.Equal(t, models.OrderStatusPending, orderStatus(t, f, order.ID))

	// Already pending
	_, err = service.InitiatePayment(f.ctx, "user-1", order.ID)
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	// Someone else's order
	_, err = service.InitiatePayment(f.ctx, "user-2", order.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	gateway.AssertExpectations(t)
}

func TestPaymentService_InitiatePaymentGatewayError(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusCreated)

	gateway := new(MockGateway)
	gateway.On("CreatePayment", mock.Anything, mock.Anything).Return(nil, errors.New("gateway unavailable")).Once()

	_, err := services.NewPaymentService(f.store, gateway, &recordingNotifier{}).InitiatePayment(f.ctx, "user-1", order.ID)
	assert.Error(t, err)
	assert.Equal(t, models.OrderStatusCreated, orderStatus(t, f, order.ID))
}

func TestPaymentService_HandleCallbackSuccess(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusPending)
	notifier := &recordingNotifier{}
	service := services.NewPaymentService(f.store, services.ManualGateway{}, notifier)

	cb := services.PaymentCallback{
		OrderID:  order.ID,
		UserID:   "user-1",
		Status:   services.PaymentStatusSucceeded,
		Delivery: events.DeliveryDetails{Email: "buyer@example.com", Method: models.DeliveryMethodCourier},
	}
	require.NoError(t, service.HandleCallback(f.ctx, cb))
	assert.Equal(t, models.OrderStatusPaid, orderStatus(t, f, order.ID))

	// A replayed confirmation is accepted and published again.
	require.NoError(t, service.HandleCallback(f.ctx, cb))
	assert.Equal(t, []events.PaymentEventType{events.PaymentSucceeded, events.PaymentSucceeded}, notifier.types())
	assert.Equal(t, "buyer@example.com", notifier.events[0].Payload.Delivery.Email)
}

func TestPaymentService_HandleCallbackRejections(t *testing.T) {
	f := newStoreFixture(t)
	notifier := &recordingNotifier{}
	service := services.NewPaymentService(f.store, services.ManualGateway{}, notifier)

	pending := f.order(t, "user-1", models.OrderStatusPending)
	err := service.HandleCallback(f.ctx, services.PaymentCallback{OrderID: pending.ID, UserID: "user-2", Status: services.PaymentStatusSucceeded})
	assert.ErrorIs(t, err, services.ErrForbidden)

	created := f.order(t, "user-1", models.OrderStatusCreated)
	err = service.HandleCallback(f.ctx, services.PaymentCallback{OrderID: created.ID, UserID: "user-1", Status: services.PaymentStatusSucceeded})
	assert.ErrorIs(t, err, services.ErrInvalidTransition)

	err = service.HandleCallback(f.ctx, services.PaymentCallback{OrderID: "missing", UserID: "user-1", Status: services.PaymentStatusSucceeded})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = service.HandleCallback(f.ctx, services.PaymentCallback{OrderID: pending.ID, UserID: "user-1", Status: "refunded"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)

	assert.Empty(t, notifier.types())
	assert.Equal(t, models.OrderStatusPending, orderStatus(t, f, pending.ID))
}

func TestPaymentService_HandleCallbackFailure(t *testing.T) {
	f := newStoreFixture(t)
	order := f.order(t, "user-1", models.OrderStatusPending)
	notifier := &recordingNotifier{}
	service := services.NewPaymentService(f.store, services.ManualGateway{}, notifier)

	err := service.HandleCallback(f.ctx, services.PaymentCallback{OrderID: order.ID, UserID: "user-1", Status: services.PaymentStatusFailed})
	require.NoError(t, err)

	assert.Equal(t, []events.PaymentEventType{events.PaymentFailed}, notifier.types())
	assert.Equal(t, models.OrderStatusPending, orderStatus(t, f, order.ID))
}
