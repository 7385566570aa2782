package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plate-notify/internal/api"
	"github.com/plate-notify/internal/auth"
	"github.com/plate-notify/internal/config"
	"github.com/plate-notify/internal/logs"
	"github.com/plate-notify/internal/middleware"
	"github.com/plate-notify/internal/obs"
	"github.com/plate-notify/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	_ "github.com/plate-notify/docs" // swagger docs
)

// @title Plate Notify API
// @version 1.0
// @description Users register, log in and report occurrences tied to vehicle plates.

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:4000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your JWT token with the `Bearer ` prefix, e.g. "Bearer eyJhbGci..."

func main() {
	cfg, err := config.Load()
	if err != nil {
		logs.New(logs.Options{}).Fatalf("Failed to load configuration: %v", err)
	}

	log := logs.New(logs.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if cfg.JWT.Secret == config.DefaultJWTSecret {
		log.Warn("JWT_SECRET is not set; using the development default")
	}

	log.Info("Connecting to database...")
	db, err := storage.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	log.Info("Running migrations...")
	if err := db.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	userRepo := storage.NewUserRepository(db)
	notificationRepo := storage.NewNotificationRepository(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewMetrics(reg)

	tokens := auth.NewTokenIssuer(cfg.JWT.Secret)
	hasher := auth.NewPasswordHasher(cfg.Security.BcryptCost)
	authMiddleware := middleware.NewAuthMiddleware(tokens, metrics, log)

	handler := api.NewHandler(userRepo, notificationRepo, hasher, tokens, db, metrics, log)
	router := api.NewRouter(handler, authMiddleware, metrics, reg, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Info("Server stopped")
}
