package handlers

import (
	"time"

	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// DiscountHandler handles HTTP requests for discounts and promocodes.
type DiscountHandler struct {
	service  *services.DiscountService
	validate *validator.Validate
}

// NewDiscountHandler creates a new DiscountHandler.
func NewDiscountHandler(service *services.DiscountService) *DiscountHandler {
	return &DiscountHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the customer-facing promocode check.
func (h *DiscountHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/promocodes/validate", h.HandleValidatePromocode)
}

// RegisterAdminRoutes registers discount and promocode administration.
// router must already enforce admin access.
func (h *DiscountHandler) RegisterAdminRoutes(router fiber.Router) {
	discountRoutes := router.Group("/discounts")
	discountRoutes.Post("/", h.HandleCreateDiscount)
	discountRoutes.Put("/:id", h.HandleUpdateDiscount)
	discountRoutes.Delete("/:id", h.HandleDeleteDiscount)

	promoRoutes := router.Group("/promocodes")
	promoRoutes.Post("/", h.HandleCreatePromocode)
	promoRoutes.Get("/:code", h.HandleGetPromocode)
	promoRoutes.Delete("/:id", h.HandleDeletePromocode)
}

// DiscountRequest is the body for creating or patching a discount.
// Omitted fields are left unchanged on update.
type DiscountRequest struct {
	ProductID *string          `json:"product_id"`
	Value     *decimal.Decimal `json:"value"`
	StartDate *time.Time       `json:"start_date"`
	EndDate   *time.Time       `json:"end_date"`
	IsActive  *bool            `json:"is_active"`
}

func (r DiscountRequest) toInput() services.DiscountInput {
	return services.DiscountInput{
		ProductID: r.ProductID,
		Value:     r.Value,
		StartDate: r.StartDate,
		EndDate:   r.EndDate,
		IsActive:  r.IsActive,
	}
}

func (h *DiscountHandler) HandleCreateDiscount(c *fiber.Ctx) error {
	var req DiscountRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	discount, err := h.service.CreateDiscount(c.UserContext(), req.toInput())
	if err != nil {
		return respondError(c, err, "Could not create discount")
	}
	return c.Status(fiber.StatusCreated).JSON(discount)
}

func (h *DiscountHandler) HandleUpdateDiscount(c *fiber.Ctx) error {
	var req DiscountRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	discount, err := h.service.UpdateDiscount(c.UserContext(), c.Params("id"), req.toInput())
	if err != nil {
		return respondError(c, err, "Could not update discount")
	}
	return c.JSON(discount)
}

func (h *DiscountHandler) HandleDeleteDiscount(c *fiber.Ctx) error {
	if err := h.service.DeleteDiscount(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete discount")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PromocodeRequest is the body of POST /promocodes. The code itself is generated.
type PromocodeRequest struct {
	Value          decimal.Decimal `json:"value"`
	MinOrderAmount decimal.Decimal `json:"min_order_amount"`
	MaxUsage       int             `json:"max_usage" validate:"required,min=1"`
	IsActive       *bool           `json:"is_active"`
}

func (h *DiscountHandler) HandleCreatePromocode(c *fiber.Ctx) error {
	var req PromocodeRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	promo, err := h.service.CreatePromocode(c.UserContext(), services.PromocodeInput{
		Value:          req.Value,
		MinOrderAmount: req.MinOrderAmount,
		MaxUsage:       req.MaxUsage,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return respondError(c, err, "Could not create promocode")
	}
	return c.Status(fiber.StatusCreated).JSON(promo)
}

func (h *DiscountHandler) HandleGetPromocode(c *fiber.Ctx) error {
	promo, err := h.service.FindPromocode(c.UserContext(), c.Params("code"))
	if err != nil {
		return respondError(c, err, "Could not retrieve promocode")
	}
	return c.JSON(promo)
}

func (h *DiscountHandler) HandleDeletePromocode(c *fiber.Ctx) error {
	if err := h.service.DeletePromocode(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err, "Could not delete promocode")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ValidatePromocodeRequest asks whether a code applies to an order amount.
type ValidatePromocodeRequest struct {
	Code        string          `json:"code" validate:"required"`
	OrderAmount decimal.Decimal `json:"order_amount"`
}

func (h *DiscountHandler) HandleValidatePromocode(c *fiber.Ctx) error {
	var req ValidatePromocodeRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	check, err := h.service.ValidatePromocode(c.UserContext(), req.Code, req.OrderAmount)
	if err != nil {
		return respondError(c, err, "Could not validate promocode")
	}
	return c.JSON(check)
}
