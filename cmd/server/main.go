package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omsapp/oms-backend/config"
	"github.com/omsapp/oms-backend/internal/app/controller"
	"github.com/omsapp/oms-backend/internal/app/repository"
	"github.com/omsapp/oms-backend/internal/app/service"
	"github.com/omsapp/oms-backend/internal/db"
	"github.com/omsapp/oms-backend/internal/middleware"
	"github.com/omsapp/oms-backend/internal/router"
	"github.com/omsapp/oms-backend/internal/scheduler"
	"github.com/omsapp/oms-backend/pkg/logger"
	"github.com/omsapp/oms-backend/pkg/mailer"
	"github.com/omsapp/oms-backend/pkg/redis"
	"github.com/omsapp/oms-backend/pkg/util"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      logFormat,
		EnableColor: true,
	})

	logger.Info("Starting OMS Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   logLevel,
	})

	// Initialize database
	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize repositories
	gdb := db.GetDB()
	userRepo := repository.NewUserRepository(gdb)
	resetRepo := repository.NewPasswordResetRepository(gdb)
	customerRepo := repository.NewCustomerRepository(gdb)
	productRepo := repository.NewProductRepository(gdb)

	// Seed the first administrator
	seeded, err := service.NewBootstrapService(userRepo).EnsureAdmin(ctx, service.AdminSeed{
		Email:    cfg.Admin.Email,
		Password: cfg.Admin.Password,
	})
	if err != nil {
		logger.Fatal("Failed to seed admin user", err)
	}
	if seeded {
		logger.Warn("Default admin account created; change its password after first login", map[string]interface{}{
			"email": cfg.Admin.Email,
		})
	}

	// Optional Redis-backed cooldown for forgot-password requests
	var throttle service.ResetThrottle
	if cfg.Redis.Enabled {
		if err := redis.Init(&cfg.Redis); err != nil {
			logger.Warn("Redis unavailable, forgot-password cooldown disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			defer redis.Close()
			throttle = redis.NewResetCooldown(redis.GetClient(), cfg.Redis.ResetCooldown)
		}
	}

	// Mail delivery
	resetMailer := mailer.NewResetMailer(
		mailer.NewSender(cfg.Email),
		cfg.Email.FrontendURL,
		service.ResetTokenExpiry,
		cfg.Email.Timeout,
	)
	if cfg.Email.Host == "" {
		logger.Warn("SMTP_HOST is empty, password reset emails will only be logged")
	}

	tokenOpts := util.TokenOptions{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      cfg.JWT.TokenExpiry,
	}

	// Initialize services
	authService := service.NewAuthService(userRepo, tokenOpts)
	passwordResetService := service.NewPasswordResetService(resetRepo, userRepo, resetMailer, throttle)
	customerService := service.NewCustomerService(customerRepo)
	productService := service.NewProductService(productRepo)

	// Initialize controllers
	authController := controller.NewAuthController(authService, passwordResetService)
	customerController := controller.NewCustomerController(customerService)
	productController := controller.NewProductController(productService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenOpts)
	rateLimiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	metrics := middleware.NewMetrics()

	// Setup router
	r := router.NewRouter(
		authController,
		customerController,
		productController,
		authMiddleware,
		rateLimiter,
		metrics,
		gdb,
		cfg,
	)
	engine := r.Setup()

	// Start reset token cleanup
	cleanup := scheduler.NewResetTokenCleanupScheduler(passwordResetService, cfg.Scheduler.ResetCleanupSpec)
	if err := cleanup.Start(); err != nil {
		logger.Fatal("Failed to start reset token cleanup scheduler", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()
	logger.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown did not complete cleanly", err)
	}

	cleanup.Stop()
	resetMailer.Wait()

	logger.Info("Server stopped successfully")
}
