package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for the authenticated user's cart.
type CartHandler struct {
	service  *services.CartService
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(service *services.CartService) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes. router must run AuthRequired.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/cart")
	cartRoutes.Get("/", h.HandleGetCart)
	cartRoutes.Delete("/", h.HandleClearCart)
	cartRoutes.Post("/items", h.HandleAddItem)
	cartRoutes.Put("/items", h.HandleUpdateItem)
	cartRoutes.Delete("/items/:productId", h.HandleRemoveItem)
}

// CartItemRequest is the body for adding or changing a cart line.
type CartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cart, err := h.service.GetCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve cart")
	}
	return c.JSON(cart)
}

func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	item, err := h.service.AddItem(c.UserContext(), middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Could not add item to cart")
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	var req CartItemRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	item, err := h.service.UpdateItemQuantity(c.UserContext(), middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, err, "Could not update cart item")
	}
	return c.JSON(item)
}

func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	item, err := h.service.RemoveItem(c.UserContext(), middleware.UserID(c), c.Params("productId"))
	if err != nil {
		return respondError(c, err, "Could not remove cart item")
	}
	return c.JSON(fiber.Map{
		"message": "Item removed from cart",
		"item":    item,
	})
}

func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cartID, err := h.service.ClearCart(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err, "Could not clear cart")
	}
	return c.JSON(fiber.Map{
		"message": "Cart cleared",
		"cart_id": cartID,
	})
}
