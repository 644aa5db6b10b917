package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"quietseed/docs"
	"quietseed/internal/auth"
	"quietseed/internal/cache"
	"quietseed/internal/config"
	"quietseed/internal/db"
	"quietseed/internal/handler"
	"quietseed/internal/metrics"
	"quietseed/internal/repository"
	"quietseed/internal/router"
	"quietseed/internal/seed"
	"quietseed/internal/service"
	"quietseed/internal/telemetry"
)

const serviceName = "quietseed"

// @title The Quiet Seed API
// @version 1.0
// @description Blog backend for The Quiet Seed: posts, categories, site settings, pages and JWT sessions.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	shutdownTracing, err := telemetry.Setup(serviceName, cfg.TraceExporter)
	if err != nil {
		log.Fatalf("tracing init: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	if cfg.SeedDemo {
		fixtures, err := seed.Default()
		if err != nil {
			log.Fatalf("load fixtures: %v", err)
		}
		report, err := seed.Apply(context.Background(), store, fixtures)
		if err != nil {
			log.Fatalf("seed: %v", err)
		}
		slog.Info("demo content seeded",
			"users", report.UsersCreated,
			"categories", report.CategoriesCreated,
			"posts", report.PostsCreated,
			"skipped", report.Skipped)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		slog.Warn("redis unavailable, sessions cannot be refreshed or revoked", "addr", cfg.RedisAddr, "error", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	appMetrics := metrics.New(registry)

	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	postService := service.NewPostService(store, appMetrics)
	categoryService := service.NewCategoryService(store, appMetrics)
	settingsService := service.NewSettingsService(store, appMetrics)
	pageService := service.NewPageService(store, appMetrics)
	userService := service.NewUserService(store, cacheClient, appMetrics)
	authService := service.NewAuthService(store, jwtService, tokenStore, cfg.AllowRegistration)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	router.Register(
		e,
		cfg,
		router.NewSessionGate(jwtService, tokenStore),
		appMetrics,
		registry,
		router.Handlers{
			Post:     handler.NewPostHandler(postService),
			Category: handler.NewCategoryHandler(categoryService),
			Settings: handler.NewSettingsHandler(settingsService, pageService),
			Auth:     handler.NewAuthHandler(authService, userService),
			User:     handler.NewUserHandler(userService),
		},
	)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	slog.Info("swagger documentation available", "url", swaggerURL(cfg))

	addr := ":" + cfg.ServerPort
	slog.Info("starting server", "addr", addr, "storage", cfg.StorageDriver)
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// openStore returns the content store selected by STORAGE_DRIVER.
func openStore(cfg *config.Config) (repository.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return repository.NewMemoryStore(), nil
	}
	gormDB, err := db.Open(db.Options{
		Driver:     cfg.StorageDriver,
		MySQLDSN:   cfg.MySQLDSN,
		SQLitePath: cfg.SQLitePath,
		Reset:      cfg.ResetDB,
	})
	if err != nil {
		return nil, err
	}
	return repository.NewGormStore(gormDB), nil
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
