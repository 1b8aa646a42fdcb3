// Package server wires repositories, services and handlers into a Fiber app.
package server

import (
	"time"

	"storefront/internal/checkout"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Server holds the HTTP app and the services behind it.
type Server struct {
	App *fiber.App
	Bus *events.PaymentBus

	Auth      *services.AuthService
	Products  *services.ProductService
	Carts     *services.CartService
	Discounts *services.DiscountService
	Orders    *services.OrderService
	Payments  *services.PaymentService
	Delivery  *services.DeliveryService
}

// Options carries the optional collaborators of New.
type Options struct {
	// OrderPublisher receives order.created events; nil disables publishing.
	OrderPublisher services.OrderEventPublisher
	// Gateway starts payments; nil uses ManualGateway.
	Gateway services.Gateway
	// Reactors are registered on the payment bus next to the delivery reactor.
	Reactors []events.Reactor
	// RequestLogging enables Fiber's access log.
	RequestLogging bool
}

// New builds every service over db and mounts the /api/v1 routes.
func New(cfg *config.Config, db *gorm.DB, opts Options) *Server {
	store := repositories.NewGORMStore(db)

	gateway := opts.Gateway
	if gateway == nil {
		gateway = services.ManualGateway{}
	}

	bus := events.NewPaymentBus()
	deliveryService := services.NewDeliveryService(store)
	bus.Register(deliveryService)
	for _, r := range opts.Reactors {
		bus.Register(r)
	}

	s := &Server{
		Bus:       bus,
		Auth:      services.NewAuthService(store.Users(), cfg.JWTSecret, cfg.JWTTTL).WithRefreshTTL(cfg.JWTRefreshTTL),
		Products:  services.NewProductService(store.Products()),
		Carts:     services.NewCartService(store),
		Discounts: services.NewDiscountService(store),
		Orders:    services.NewOrderService(store, checkout.NewPipeline(), opts.OrderPublisher),
		Payments:  services.NewPaymentService(store, gateway, bus),
		Delivery:  deliveryService,
	}

	app := fiber.New(fiber.Config{
		AppName:      "storefront",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())
	if opts.RequestLogging {
		app.Use(logger.New())
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	productHandler := handlers.NewProductHandler(s.Products)
	cartHandler := handlers.NewCartHandler(s.Carts)
	orderHandler := handlers.NewOrderHandler(s.Orders, s.Delivery)
	discountHandler := handlers.NewDiscountHandler(s.Discounts)
	paymentHandler := handlers.NewPaymentHandler(s.Payments)
	authHandler := handlers.NewAuthHandler(s.Auth)

	apiV1 := app.Group("/api/v1")

	// Public routes
	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)
	paymentHandler.RegisterCallbackRoutes(apiV1, cfg.PaymentWebhookSecret)
	if cfg.IdentityBrokerSecret != "" {
		authHandler.RegisterIdentityRoutes(apiV1, cfg.IdentityBrokerSecret)
	}

	// Routes below require a valid JWT
	protected := apiV1.Group("", middleware.AuthRequired(s.Auth))
	authHandler.RegisterSessionRoutes(protected)
	cartHandler.RegisterRoutes(protected)
	orderHandler.RegisterRoutes(protected)
	paymentHandler.RegisterRoutes(protected)
	discountHandler.RegisterRoutes(protected)

	// Routes below also require the ADMIN role
	admin := protected.Group("", middleware.AdminOnly())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterAdminRoutes(admin)
	discountHandler.RegisterAdminRoutes(admin)

	s.App = app
	return s
}
