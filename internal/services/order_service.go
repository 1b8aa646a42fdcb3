package services

import (
	"context"
	"fmt"

	"storefront/internal/checkout"
	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/rs/zerolog/log"
)

// OrderEventPublisher announces committed orders to other systems.
type OrderEventPublisher interface {
	PublishOrderCreated(ctx context.Context, order *models.Order) error
}

// OrderService handles business logic related to orders.
type OrderService struct {
	store     repositories.Store
	pipeline  *checkout.Pipeline
	publisher OrderEventPublisher // optional
}

// NewOrderService creates a new OrderService. publisher may be nil.
func NewOrderService(store repositories.Store, pipeline *checkout.Pipeline, publisher OrderEventPublisher) *OrderService {
	if pipeline == nil {
		pipeline = checkout.NewPipeline()
	}
	return &OrderService{
		store:     store,
		pipeline:  pipeline,
		publisher: publisher,
	}
}

// CreateOrderFromCart runs the checkout pipeline for the user's cart and
// persists the resulting order. Pipeline stages, order insert, promocode
// usage increment and cart deletion share one transaction: any failure
// leaves stock, promocode usage and the cart untouched.
func (s *OrderService) CreateOrderFromCart(ctx context.Context, userID, promocode string) (*models.Order, error) {
	var order *models.Order
	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		pc, err := s.pipeline.Process(ctx, tx, userID, promocode)
		if err != nil {
			return err
		}

		order, err = checkout.AssembleFrom(pc)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		if pc.AppliedPromocode != nil {
			affected, err := tx.Promocodes().IncrementUsedCount(ctx, pc.AppliedPromocode.ID)
			if err != nil {
				return err
			}
			if affected == 0 {
				// Another checkout used the last redemption after validation.
				return &checkout.PromoInvalidError{Code: pc.AppliedPromocode.Code, Reason: checkout.PromoUsageExhausted}
			}
		}

		return tx.Carts().Delete(ctx, pc.Cart.ID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("order_id", order.ID).
		Str("user_id", userID).
		Str("total", order.TotalAmount.StringFixed(2)).
		Msg("order created from cart")

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, order); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID).Msg("failed to publish order created event")
		}
	}
	return order, nil
}

// GetUserOrders lists the user's orders; having none is reported as not found.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("no orders found for user %s: %w", userID, repositories.ErrNotFound)
	}
	return orders, nil
}

// GetUserOrderByID returns one of the user's orders.
func (s *OrderService) GetUserOrderByID(ctx context.Context, userID, orderID string) (*models.Order, error) {
	return s.store.Orders().GetForUser(ctx, userID, orderID)
}

// ChangeOrderStatus moves an order to status if the lifecycle allows it.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, orderID string, status models.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: invalid order status: %s", ErrInvalidInput, status)
	}

	var order *models.Order
	err := s.store.WithinTransaction(ctx, func(tx repositories.Store) error {
		var err error
		order, err = tx.Orders().GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		return transitionOrder(ctx, tx.Orders(), order, status)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// transitionOrder checks the lifecycle table against the status order was read
// with, then writes the new status only if the row still holds that status.
// On success order.Status is updated in place.
func transitionOrder(ctx context.Context, orders repositories.OrderRepository, order *models.Order, to models.OrderStatus) error {
	if !order.Status.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, to)
	}
	affected, err := orders.TransitionStatus(ctx, order.ID, order.Status, to)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: order %s is no longer %s", ErrInvalidTransition, order.ID, order.Status)
	}
	order.Status = to
	return nil
}
