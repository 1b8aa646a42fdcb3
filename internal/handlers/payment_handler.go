package handlers

import (
	"storefront/internal/middleware"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles payment initiation and gateway callbacks.
type PaymentHandler struct {
	service  *services.PaymentService
	validate *validator.Validate
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers payment initiation. router must run AuthRequired.
func (h *PaymentHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/payments", h.HandleInitiatePayment)
}

// RegisterCallbackRoutes registers the gateway webhook, guarded by the
// shared-secret signature instead of a user token.
func (h *PaymentHandler) RegisterCallbackRoutes(router fiber.Router, webhookSecret string) {
	router.Post("/payments/callback", middleware.RequireSignature(webhookSecret), h.HandleCallback)
}

// InitiatePaymentRequest is the body of POST /payments.
type InitiatePaymentRequest struct {
	OrderID string `json:"order_id" validate:"required"`
}

func (h *PaymentHandler) HandleInitiatePayment(c *fiber.Ctx) error {
	var req InitiatePaymentRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	intent, err := h.service.InitiatePayment(c.UserContext(), middleware.UserID(c), req.OrderID)
	if err != nil {
		return respondError(c, err, "Could not initiate payment")
	}
	return c.Status(fiber.StatusCreated).JSON(intent)
}

// HandleCallback applies a signed gateway confirmation.
func (h *PaymentHandler) HandleCallback(c *fiber.Ctx) error {
	var cb services.PaymentCallback
	if ok, err := parseBody(c, h.validate, &cb); !ok {
		return err
	}

	if err := h.service.HandleCallback(c.UserContext(), cb); err != nil {
		return respondError(c, err, "Could not process payment callback")
	}
	return c.JSON(fiber.Map{
		"message":  "Payment callback processed",
		"order_id": cb.OrderID,
		"status":   cb.Status,
	})
}
