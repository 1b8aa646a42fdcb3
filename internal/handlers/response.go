package handlers

import (
	"errors"
	"fmt"

	"storefront/internal/checkout"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, checkout.ErrPromoNotFound), errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInsufficientStock),
		errors.Is(err, checkout.ErrPromoInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, checkout.ErrReservationFailed),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, repositories.ErrConflict),
		errors.Is(err, services.ErrInvalidTransition):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err with the status it maps to. Unexpected errors are
// logged and their detail is kept out of the response.
func respondError(c *fiber.Ctx, err error, message string) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg(message)
		return c.Status(status).JSON(fiber.Map{
			"message": message,
			"error":   "internal server error",
		})
	}

	log.Debug().Err(err).Str("path", c.Path()).Int("status", status).Msg(message)
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}
	var promoErr *checkout.PromoInvalidError
	if errors.As(err, &promoErr) {
		body["reason"] = string(promoErr.Reason)
	}
	return c.Status(status).JSON(body)
}

// parseBody decodes the request body into dst and validates it.
// It writes the 400 response itself and reports whether the caller may continue.
func parseBody(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	return validated(c, validate, dst)
}

// parseQuery is parseBody for query-string parameters.
func parseQuery(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (bool, error) {
	if err := c.QueryParser(dst); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid query parameters",
			"error":   err.Error(),
		})
	}
	return validated(c, validate, dst)
}

func validated(c *fiber.Ctx, validate *validator.Validate, dst interface{}) (bool, error) {
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"error":   err.Error(),
			})
		}
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}
	return true, nil
}
