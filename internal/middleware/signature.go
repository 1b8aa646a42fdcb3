package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Signature"

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// RequireSignature verifies that the request body was signed with secret.
// It guards server-to-server callbacks: the payment gateway webhook and the
// identity broker's Google sign-in.
func RequireSignature(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got, err := hex.DecodeString(c.Get(SignatureHeader))
		if err != nil || len(got) == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Missing or malformed signature",
			})
		}

		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(c.Body())
		if !hmac.Equal(got, mac.Sum(nil)) {
			log.Warn().Str("ip", c.IP()).Str("path", c.Path()).Msg("request signature mismatch")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid signature",
			})
		}
		return c.Next()
	}
}
