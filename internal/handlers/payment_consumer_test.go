package handlers_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storefront/internal/handlers"
	"storefront/internal/models"

	"github.com/shopspring/decimal"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentCallbackConsumer(t *testing.T) {
	app := setupApp(t)
	ctx := context.Background()
	consume := handlers.NewPaymentCallbackConsumer(app.srv.Payments, 5*time.Second)

	order := &models.Order{
		UserID:      "user-1",
		Status:      models.OrderStatusPending,
		TotalAmount: decimal.NewFromInt(10),
		Items:       []models.OrderItem{{ProductID: "p", Quantity: 1, Price: decimal.NewFromInt(10), LineTotal: decimal.NewFromInt(10)}},
	}
	require.NoError(t, app.store.Orders().Create(ctx, order))

	message := func(v interface{}) amqp.Delivery {
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		return amqp.Delivery{Body: raw}
	}
	delivery := map[string]string{"email": "buyer@example.com", "method": "PICKUP"}

	// Malformed and invalid messages are dropped, not retried.
	assert.NoError(t, consume(amqp.Delivery{Body: []byte("{")}))
	assert.NoError(t, consume(message(map[string]interface{}{"order_id": order.ID, "status": "succeeded"})))

	// A callback for another user's order is rejected and dropped.
	assert.NoError(t, consume(message(map[string]interface{}{
		"order_id": order.ID, "user_id": "user-2", "status": "succeeded", "delivery": delivery,
	})))

	require.NoError(t, consume(message(map[string]interface{}{
		"order_id": order.ID, "user_id": "user-1", "status": "succeeded", "delivery": delivery,
	})))
	got, err := app.store.Orders().GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, got.Status)
}
