package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Nakonechnik/SeaBattle/internal/factory"
	"github.com/Nakonechnik/SeaBattle/internal/server"
	redisstorage "github.com/Nakonechnik/SeaBattle/internal/storage/redis"
)

func main() {
	// A .env file is optional; real environment variables win
	_ = godotenv.Load()

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	// Build factory config from environment
	serverCfg := server.DefaultConfig()
	serverCfg.Host = os.Getenv("SEABATTLE_HOST")
	if port := os.Getenv("SEABATTLE_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Error("invalid SEABATTLE_PORT", slog.String("value", port))
			os.Exit(1)
		}
		serverCfg.Port = p
	}

	cfg := factory.Config{
		ServerConfig: serverCfg,
		TurnBudget:   turnBudget(logger),
		Logger:       logger,
		StorageType:  os.Getenv("STORAGE_TYPE"),
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			logger.Error("REDIS_URL required when STORAGE_TYPE=redis")
			os.Exit(1)
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Server.Start()
	}()

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := app.Server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

func logLevel() slog.Level {
	if os.Getenv("SEABATTLE_DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// turnBudget reads the per-turn limit in seconds, zero meaning default
func turnBudget(logger *slog.Logger) time.Duration {
	raw := os.Getenv("SEABATTLE_TURN_SECONDS")
	if raw == "" {
		return 0
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		logger.Warn("invalid SEABATTLE_TURN_SECONDS, using default", slog.String("value", raw))
		return 0
	}
	return time.Duration(seconds) * time.Second
}
