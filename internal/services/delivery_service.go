package services

import (
	"context"
	"errors"
	"strings"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/rs/zerolog/log"
)

const addressNotProvided = "Address not provided"

// DeliveryService creates deliveries for paid orders. It is registered on the
// payment bus as a reactor.
type DeliveryService struct {
	store repositories.Store
}

// NewDeliveryService creates a new DeliveryService.
func NewDeliveryService(store repositories.Store) *DeliveryService {
	return &DeliveryService{store: store}
}

// Name identifies the reactor in logs.
func (s *DeliveryService) Name() string { return "delivery" }

// OnPaymentEvent creates the delivery for a payment.succeeded event at most
// once per order. Events for unknown orders or with a mismatched user are
// logged and dropped.
func (s *DeliveryService) OnPaymentEvent(ctx context.Context, event events.PaymentEvent) error {
	if event.Type != events.PaymentSucceeded {
		return nil
	}
	p := event.Payload
	logger := log.With().Str("order_id", p.OrderID).Logger()

	order, err := s.store.Orders().GetByID(ctx, p.OrderID)
	if errors.Is(err, repositories.ErrNotFound) {
		logger.Warn().Msg("unable to create delivery, order missing")
		return nil
	}
	if err != nil {
		return err
	}
	if order.UserID != p.UserID {
		logger.Warn().Str("expected_user", order.UserID).Str("received_user", p.UserID).Msg("delivery event user mismatch")
		return nil
	}

	user, err := s.store.Users().GetByID(ctx, order.UserID)
	if errors.Is(err, repositories.ErrNotFound) {
		logger.Warn().Msg("unable to create delivery, user missing")
		return nil
	}
	if err != nil {
		return err
	}

	exists, err := s.deliveryExists(ctx, p.OrderID)
	if err != nil {
		return err
	}
	if exists {
		logger.Debug().Msg("delivery already exists, skipping creation")
		return nil
	}

	address := strings.TrimSpace(p.Delivery.Address)
	if address == "" {
		address = user.Address
	}
	if strings.TrimSpace(address) == "" {
		address = addressNotProvided
	}

	delivery := &models.Delivery{
		OrderID: p.OrderID,
		Address: address,
		Email:   p.Delivery.Email,
		Phone:   p.Delivery.Phone,
		Method:  p.Delivery.Method,
	}
	if err := s.store.Deliveries().Create(ctx, delivery); err != nil {
		// A concurrent duplicate event won the unique order_id index.
		if errors.Is(err, repositories.ErrConflict) {
			logger.Debug().Msg("delivery created concurrently, skipping")
			return nil
		}
		return err
	}

	logger.Info().Str("delivery_id", delivery.ID).Msg("delivery created after successful payment")
	return nil
}

// GetForOrder returns the delivery of one of the user's orders.
func (s *DeliveryService) GetForOrder(ctx context.Context, userID, orderID string) (*models.Delivery, error) {
	if _, err := s.store.Orders().GetForUser(ctx, userID, orderID); err != nil {
		return nil, err
	}
	return s.store.Deliveries().FindByOrderID(ctx, orderID)
}

func (s *DeliveryService) deliveryExists(ctx context.Context, orderID string) (bool, error) {
	_, err := s.store.Deliveries().FindByOrderID(ctx, orderID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repositories.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
