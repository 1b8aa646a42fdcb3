package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthApp(authService *services.AuthService) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.AuthRequired(authService), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UserID(c) + ":" + middleware.Role(c))
	})
	app.Get("/admin", middleware.AuthRequired(authService), middleware.AdminOnly(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	_, _ = buf.ReadFrom(resp.Body)
	return resp.StatusCode, buf.String()
}

func TestAuthRequired(t *testing.T) {
	authService := services.NewAuthService(nil, "secret", time.Hour)
	app := newAuthApp(authService)
	token, err := authService.IssueToken(&models.User{ID: "user-1", Role: models.RoleCustomer})
	require.NoError(t, err)

	status, _ := get(t, app, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, app, "/me", "Token "+token)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = get(t, app, "/me", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := get(t, app, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user-1:CUSTOMER", body)
}

func TestAdminOnly(t *testing.T) {
	authService := services.NewAuthService(nil, "secret", time.Hour)
	app := newAuthApp(authService)

	customer, err := authService.IssueToken(&models.User{ID: "user-1", Role: models.RoleCustomer})
	require.NoError(t, err)
	admin, err := authService.IssueToken(&models.User{ID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)

	status, _ := get(t, app, "/admin", "Bearer "+customer)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = get(t, app, "/admin", "Bearer "+admin)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestRequireSignature(t *testing.T) {
	app := fiber.New()
	app.Post("/callback", middleware.RequireSignature("webhook-secret"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	body := `{"order_id":"o-1","status":"succeeded"}`

	post := func(signature, payload string) int {
		req := httptest.NewRequest(http.MethodPost, "/callback", strings.NewReader(payload))
		if signature != "" {
			req.Header.Set(middleware.SignatureHeader, signature)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, post(middleware.Sign("webhook-secret", []byte(body)), body))
	assert.Equal(t, http.StatusUnauthorized, post("", body))
	assert.Equal(t, http.StatusUnauthorized, post("zz-not-hex", body))
	assert.Equal(t, http.StatusUnauthorized, post(middleware.Sign("other-secret", []byte(body)), body))
	assert.Equal(t, http.StatusUnauthorized, post(middleware.Sign("webhook-secret", []byte(body)), body+" "))
}
