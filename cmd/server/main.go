// Package main is the entrypoint for the storyboard API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AkhilTej3/anime-storyboard/internal/api"
	"github.com/AkhilTej3/anime-storyboard/internal/api/handler"
	mw "github.com/AkhilTej3/anime-storyboard/internal/api/middleware"
	"github.com/AkhilTej3/anime-storyboard/internal/cache"
	"github.com/AkhilTej3/anime-storyboard/internal/config"
	"github.com/AkhilTej3/anime-storyboard/internal/generation"
	"github.com/AkhilTej3/anime-storyboard/internal/imagegen"
	"github.com/AkhilTej3/anime-storyboard/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "image_provider", cfg.Generation.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create image provider. Chosen once at startup; every job in this
	// process uses the same backend.
	provider, err := imagegen.NewProvider(cfg.Generation)
	if err != nil {
		return fmt.Errorf("create image provider: %w", err)
	}
	slog.Info("image provider initialized", "provider", provider.Name())

	// 6. Create store and generation service
	pgStore := store.NewPostgresStore(pool)
	svc := generation.NewService(provider, pgStore, redisCache, cfg.Generation.RequestTimeout)

	// 7. Build router with dependencies
	auth := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, 30)

	deps := api.Dependencies{
		Auth:      auth,
		RateLimit: rateLimit,

		HealthHandler: handler.NewHealthHandler(pgStore, redisCache),

		GenerateImage:       handler.NewGenerateImageHandler(svc),
		GenerateProjectPack: handler.NewGenerateProjectPackHandler(svc),
		GenerateStoryboard:  handler.NewGenerateStoryboardHandler(svc),

		GetJobHandler: handler.NewGetJobHandler(pgStore, redisCache),

		ListAssetsHandler: handler.NewListAssetsHandler(pgStore),
		GetAssetHandler:   handler.NewGetAssetHandler(pgStore),

		CreateKeyHandler: handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:  handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	// Generation requests are synchronous and a storyboard can run its
	// per-image timeout once per scene, so the write timeout must cover
	// the slowest allowed request.
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 8*cfg.Generation.RequestTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
