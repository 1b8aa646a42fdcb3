package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/server"
	"storefront/pkg/rabbitmq"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	// --- Database ---
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if cfg.SeedDemoData {
		seedProducts(context.Background(), repositories.NewGORMProductRepository(db))
	}

	// --- RabbitMQ (optional) ---
	opts := server.Options{RequestLogging: true}
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQEnabled {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()

		opts.OrderPublisher = mqClient
		opts.Reactors = []events.Reactor{rabbitmq.NewPaymentEventReactor(mqClient)}
	}

	srv := server.New(cfg, db, opts)

	// --- Payment callbacks over RabbitMQ ---
	if mqClient != nil {
		consumer := handlers.NewPaymentCallbackConsumer(srv.Payments, 30*time.Second)
		if err := mqClient.ConsumePaymentCallbacks(consumer); err != nil {
			log.Error().Err(err).Msg("failed to start payment callback consumer")
		}
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.AppPort).Msg("starting server")
		if err := srv.App.Listen(cfg.AppPort); err != nil {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down server")
	if err := srv.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("error during Fiber shutdown")
	}
	log.Info().Msg("server gracefully stopped")
}

// seedProducts populates an empty catalog with a few demo products.
func seedProducts(ctx context.Context, repo repositories.ProductRepository) {
	existing, err := repo.GetAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not check catalog before seeding")
		return
	}
	if len(existing) > 0 {
		return
	}

	products := []models.Product{
		{Name: "Laptop", Description: "High performance laptop", Price: decimal.NewFromInt(1200), Stock: 10},
		{Name: "Keyboard", Description: "Mechanical keyboard", Price: decimal.NewFromInt(75), Stock: 25},
		{Name: "Mouse", Description: "Ergonomic wireless mouse", Price: decimal.NewFromInt(25), Stock: 50},
	}
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Error().Err(err).Str("product", products[i].Name).Msg("error seeding product")
			continue
		}
		log.Info().Str("product", products[i].Name).Str("id", products[i].ID).Msg("seeded product")
	}
}
