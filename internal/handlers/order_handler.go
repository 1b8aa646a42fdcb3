package handlers

import (
	"fmt"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service    *services.OrderService
	deliveries *services.DeliveryService
	validate   *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, deliveries *services.DeliveryService) *OrderHandler {
	return &OrderHandler{
		service:    service,
		deliveries: deliveries,
		validate:   validator.New(),
	}
}

// RegisterRoutes registers the customer order routes. router must run AuthRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Get("/:id/delivery", h.HandleGetDelivery)
	orderRoutes.Post("/", h.HandleCreateOrder)
}

// RegisterAdminRoutes registers order management routes. router must
// already enforce admin access.
func (h *OrderHandler) RegisterAdminRoutes(router fiber.Router) {
	router.Patch("/orders/:id/status", h.HandleUpdateOrderStatus)
}

// CreateOrderRequest is the optional body of POST /orders.
type CreateOrderRequest struct {
	Promocode string `json:"promocode" validate:"omitempty,max=64"`
}

// HandleCreateOrder checks out the caller's cart.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, h.validate, &req); !ok {
			return err
		}
	}

	order, err := h.service.CreateOrderFromCart(c.UserContext(), middleware.UserID(c), req.Promocode)
	if err != nil {
		return respondError(c, err, "Could not create order")
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders lists the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetUserOrders(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve orders")
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves one of the caller's orders.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	order, err := h.service.GetUserOrderByID(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, fmt.Sprintf("Could not retrieve order %s", c.Params("id")))
	}
	return c.JSON(order)
}

// HandleGetDelivery returns the delivery created for a paid order.
func (h *OrderHandler) HandleGetDelivery(c *fiber.Ctx) error {
	delivery, err := h.deliveries.GetForOrder(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve delivery")
	}
	return c.JSON(delivery)
}

// UpdateStatusRequest is the body of PATCH /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleUpdateOrderStatus updates the status of an existing order.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	var req UpdateStatusRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	orderID := c.Params("id")
	order, err := h.service.ChangeOrderStatus(c.UserContext(), orderID, models.OrderStatus(req.Status))
	if err != nil {
		return respondError(c, err, "Could not update order status")
	}

	log.Info().Str("order_id", orderID).Str("status", req.Status).Msg("order status changed")
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s status updated successfully to %s", orderID, req.Status),
		"order":   order,
	})
}
