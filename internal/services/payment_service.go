package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/rs/zerolog/log"
)

// PaymentStatus is the normalized outcome reported by a gateway.
type PaymentStatus string

const (
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentCallback is the gateway-independent confirmation signal.
type PaymentCallback struct {
	OrderID   string                 `json:"order_id" validate:"required"`
	UserID    string                 `json:"user_id" validate:"required"`
	Status    PaymentStatus          `json:"status" validate:"required,oneof=succeeded failed"`
	Reference string                 `json:"reference"`
	Delivery  events.DeliveryDetails `json:"delivery"`
}

// PaymentNotifier fans payment events out to reactors.
type PaymentNotifier interface {
	Notify(ctx context.Context, event events.PaymentEvent)
}

// PaymentService starts payments and turns gateway callbacks into order
// status changes and payment events.
type PaymentService struct {
	store    repositories.Store
	gateway  Gateway
	notifier PaymentNotifier
	currency string
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store repositories.Store, gateway Gateway, notifier PaymentNotifier) *PaymentService {
	return &PaymentService{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		currency: "USD",
	}
}

// InitiatePayment starts collecting payment for a CREATED order owned by
// userID. The order is claimed (CREATED -> PENDING) before the gateway is
// called, so concurrent requests cannot open two payments for it; a gateway
// failure puts it back to CREATED.
func (s *PaymentService) InitiatePayment(ctx context.Context, userID, orderID string) (*PaymentIntent, error) {
	order, err := s.store.Orders().GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusCreated {
		return nil, fmt.Errorf("%w: cannot start payment for order in status %s", ErrInvalidTransition, order.Status)
	}
	if err := transitionOrder(ctx, s.store.Orders(), order, models.OrderStatusPending); err != nil {
		return nil, err
	}

	intent, err := s.gateway.CreatePayment(ctx, PaymentRequest{
		OrderID:  order.ID,
		UserID:   userID,
		Amount:   order.TotalAmount,
		Currency: s.currency,
	})
	if err != nil {
		if _, revertErr := s.store.Orders().TransitionStatus(ctx, order.ID, models.OrderStatusPending, models.OrderStatusCreated); revertErr != nil {
			log.Error().Err(revertErr).Str("order_id", order.ID).Msg("failed to release order after gateway error")
		}
		return nil, fmt.Errorf("failed to create payment for order %s: %w", order.ID, err)
	}

	log.Info().Str("order_id", order.ID).Str("reference", intent.Reference).Msg("payment initiated")
	return intent, nil
}

// HandleCallback applies a gateway confirmation. A success marks the order
// PAID and publishes payment.succeeded; a replay on an already PAID order
// publishes again and relies on reactors being idempotent. A failure leaves
// the order as is and publishes payment.failed. Reactor errors never reach
// the caller.
func (s *PaymentService) HandleCallback(ctx context.Context, cb PaymentCallback) error {
	event := events.PaymentEvent{
		Payload: events.PaymentPayload{
			OrderID:  cb.OrderID,
			UserID:   cb.UserID,
			Delivery: cb.Delivery,
		},
	}

	switch cb.Status {
	case PaymentStatusFailed:
		log.Warn().Str("order_id", cb.OrderID).Str("reference", cb.Reference).Msg("payment failed")
		event.Type = events.PaymentFailed
		s.notifier.Notify(ctx, event)
		return nil
	case PaymentStatusSucceeded:
	default:
		return fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, cb.Status)
	}

	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		order, err := tx.Orders().GetByID(ctx, cb.OrderID)
		if err != nil {
			return err
		}
		if order.UserID != cb.UserID {
			return fmt.Errorf("%w: order %s does not belong to user %s", ErrForbidden, cb.OrderID, cb.UserID)
		}
		if order.Status == models.OrderStatusPaid {
			log.Info().Str("order_id", order.ID).Msg("payment confirmation replayed for paid order")
			return nil
		}
		err = transitionOrder(ctx, tx.Orders(), order, models.OrderStatusPaid)
		if errors.Is(err, ErrInvalidTransition) {
			// A concurrent confirmation may have marked it PAID first.
			if current, getErr := tx.Orders().GetByID(ctx, order.ID); getErr == nil && current.Status == models.OrderStatusPaid {
				log.Info().Str("order_id", order.ID).Msg("payment confirmed concurrently")
				return nil
			}
		}
		return err
	})
	if err != nil {
		return err
	}

	event.Type = events.PaymentSucceeded
	s.notifier.Notify(ctx, event)
	return nil
}
