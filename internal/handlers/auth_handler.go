package handlers

import (
	"time"

	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const refreshCookie = "refresh_token"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/refresh", h.HandleRefresh)
}

// RegisterIdentityRoutes mounts Google sign-in. The identity it carries is
// only trusted because the request is signed by the identity broker that
// completed the OAuth exchange.
func (h *AuthHandler) RegisterIdentityRoutes(router fiber.Router, brokerSecret string) {
	router.Post("/auth/google", middleware.RequireSignature(brokerSecret), h.HandleGoogleSignIn)
}

// RegisterSessionRoutes registers routes for an authenticated session.
func (h *AuthHandler) RegisterSessionRoutes(router fiber.Router) {
	router.Post("/auth/logout", h.HandleLogout)
}

// RegisterRequest is the body of POST /auth/register. Only email accounts
// can be created here.
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
	FirstName string `json:"first_name" validate:"omitempty,max=100"`
	LastName  string `json:"last_name" validate:"omitempty,max=100"`
	Address   string `json:"address" validate:"omitempty,max=255"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

// HandleRegister creates an email account and starts a session for it.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	result, err := h.authService.RegisterUser(c.UserContext(), models.ProviderEmail, services.ProvisionInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		Phone:     req.Phone,
	})
	if err != nil {
		return respondError(c, err, "Registration failed")
	}
	return h.respondSession(c, fiber.StatusCreated, "User registered successfully", result)
}

// GoogleSignInRequest is the verified Google profile forwarded by the broker.
type GoogleSignInRequest struct {
	GoogleID  string `json:"google_id" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"required,max=100"`
}

// HandleGoogleSignIn signs in the Google account, creating it on first use.
func (h *AuthHandler) HandleGoogleSignIn(c *fiber.Ctx) error {
	var req GoogleSignInRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	result, err := h.authService.RegisterUser(c.UserContext(), models.ProviderGoogle, services.ProvisionInput{
		Email:     req.Email,
		GoogleID:  req.GoogleID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return respondError(c, err, "Google sign-in failed")
	}

	status := fiber.StatusOK
	if result.IsNewUser {
		status = fiber.StatusCreated
	}
	return h.respondSession(c, status, "Signed in with Google", result)
}

func (h *AuthHandler) respondSession(c *fiber.Ctx, status int, message string, result *services.Provisioned) error {
	session, err := h.authService.StartSession(c.UserContext(), result.User)
	if err != nil {
		return respondError(c, err, "Could not issue token")
	}
	setRefreshCookie(c, session.RefreshToken, session.RefreshExpiresAt)
	return c.Status(status).JSON(fiber.Map{
		"message":       message,
		"user":          result.User,
		"is_new_user":   result.IsNewUser,
		"token":         session.AccessToken,
		"refresh_token": session.RefreshToken,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin handles user login and issues a token pair.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseBody(c, h.validate, &req); !ok {
		return err
	}

	session, err := h.authService.LoginUser(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Authentication failed")
	}

	setRefreshCookie(c, session.RefreshToken, session.RefreshExpiresAt)
	return c.JSON(fiber.Map{
		"message":       "Login successful",
		"token":         session.AccessToken,
		"refresh_token": session.RefreshToken,
	})
}

// RefreshRequest carries the refresh token when the cookie is not used.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh exchanges a refresh token, from the body or the cookie, for a
// new token pair.
func (h *AuthHandler) HandleRefresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}
	token := req.RefreshToken
	if token == "" {
		token = c.Cookies(refreshCookie)
	}
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Refresh token is required",
		})
	}

	session, err := h.authService.RefreshSession(c.UserContext(), token)
	if err != nil {
		return respondError(c, err, "Could not refresh session")
	}

	setRefreshCookie(c, session.RefreshToken, session.RefreshExpiresAt)
	return c.JSON(fiber.Map{
		"message":       "Session refreshed",
		"token":         session.AccessToken,
		"refresh_token": session.RefreshToken,
	})
}

// HandleLogout revokes the caller's refresh token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), middleware.UserID(c)); err != nil {
		return respondError(c, err, "Could not log out")
	}
	setRefreshCookie(c, "", time.Unix(0, 0))
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func setRefreshCookie(c *fiber.Ctx, token string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/api/v1/auth",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteStrictMode,
		Expires:  expires,
	})
}
