package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
)

// NewPaymentCallbackConsumer returns a queue message handler that applies
// payment callbacks delivered over RabbitMQ. Messages that can never succeed
// are acknowledged and dropped; other failures are returned for redelivery.
func NewPaymentCallbackConsumer(service *services.PaymentService, timeout time.Duration) func(amqp.Delivery) error {
	validate := validator.New()
	return func(msg amqp.Delivery) error {
		var cb services.PaymentCallback
		if err := json.Unmarshal(msg.Body, &cb); err != nil {
			log.Error().Err(err).Uint64("tag", msg.DeliveryTag).Msg("dropping malformed payment callback")
			return nil
		}
		if err := validate.Struct(cb); err != nil {
			log.Error().Err(err).Str("order_id", cb.OrderID).Msg("dropping invalid payment callback")
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := service.HandleCallback(ctx, cb)
		if err == nil {
			return nil
		}
		if statusFor(err) < 500 && !errors.Is(err, services.ErrConflict) {
			log.Warn().Err(err).Str("order_id", cb.OrderID).Msg("dropping rejected payment callback")
			return nil
		}
		return fmt.Errorf("payment callback for order %s: %w", cb.OrderID, err)
	}
}
