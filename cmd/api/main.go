package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/greenbasket/greenbasket-backend/api/routes"
	"github.com/greenbasket/greenbasket-backend/internal/agents"
	"github.com/greenbasket/greenbasket-backend/internal/areas"
	"github.com/greenbasket/greenbasket-backend/internal/auth"
	"github.com/greenbasket/greenbasket-backend/internal/cart"
	"github.com/greenbasket/greenbasket-backend/internal/fulfillment"
	"github.com/greenbasket/greenbasket-backend/internal/notifications"
	"github.com/greenbasket/greenbasket-backend/internal/orders"
	"github.com/greenbasket/greenbasket-backend/internal/products"
	"github.com/greenbasket/greenbasket-backend/internal/settings"
	"github.com/greenbasket/greenbasket-backend/internal/users"
	"github.com/greenbasket/greenbasket-backend/pkg/auth/session"
	"github.com/greenbasket/greenbasket-backend/pkg/config"
	"github.com/greenbasket/greenbasket-backend/pkg/db"
	"github.com/greenbasket/greenbasket-backend/pkg/logger"
	"github.com/greenbasket/greenbasket-backend/pkg/metrics"
	"github.com/greenbasket/greenbasket-backend/pkg/migrate"
	"github.com/greenbasket/greenbasket-backend/pkg/outbox"
	"github.com/greenbasket/greenbasket-backend/pkg/payments"
	"github.com/greenbasket/greenbasket-backend/pkg/redis"
	"github.com/greenbasket/greenbasket-backend/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gormDB := dbClient.DB()
	userRepo := users.NewRepository(gormDB)
	agentRepo := agents.NewRepository(gormDB)
	outboxSvc := outbox.NewService(outbox.NewRepository(gormDB), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		AgentRepo:      agentRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	exitOn(logg, "auth service", err)

	usersService, err := users.NewService(userRepo)
	exitOn(logg, "users service", err)

	productRepo := products.NewRepository(gormDB)
	productsService, err := products.NewService(productRepo)
	exitOn(logg, "products service", err)

	cartService, err := cart.NewService(cart.NewRepository(gormDB), productRepo)
	exitOn(logg, "cart service", err)

	areasService, err := areas.NewService(areas.NewRepository(gormDB), agentRepo)
	exitOn(logg, "areas service", err)

	settingsService, err := settings.NewService(settings.NewRepository(gormDB))
	exitOn(logg, "settings service", err)

	fulfillmentMetrics := metrics.NewFulfillmentMetrics(prometheus.DefaultRegisterer)
	fulfillmentService, err := fulfillment.NewService(
		fulfillment.NewRepository(gormDB),
		dbClient,
		outboxSvc,
		fulfillmentMetrics,
		logg,
		cfg.Checkout.DefaultAgentCapacity,
	)
	exitOn(logg, "fulfillment service", err)

	ordersService, err := orders.NewService(orders.NewRepository(gormDB), agentRepo)
	exitOn(logg, "orders service", err)

	agentsService, err := agents.NewService(agents.ServiceParams{
		Repo:           agentRepo,
		UserRepo:       userRepo,
		Tx:             dbClient,
		Outbox:         outboxSvc,
		Storage:        gcsClient,
		GCSConfig:      cfg.GCS,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	exitOn(logg, "agents service", err)

	notificationsService, err := notifications.NewService(notifications.NewRepository(gormDB))
	exitOn(logg, "notifications service", err)

	var upiLink *payments.UPILink
	if cfg.UPI.PayeeAddress != "" {
		upiLink, err = payments.NewUPILink(cfg.UPI)
		exitOn(logg, "upi link", err)
	} else {
		logg.Warn(context.Background(), "upi payee not configured, payment links disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, upiLink, routes.Services{
			Auth:          authService,
			Users:         usersService,
			Products:      productsService,
			Cart:          cartService,
			Areas:         areasService,
			Settings:      settingsService,
			Fulfillment:   fulfillmentService,
			Orders:        ordersService,
			Agents:        agentsService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func exitOn(logg *logger.Logger, what string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+what, err)
	os.Exit(1)
}
