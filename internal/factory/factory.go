package factory

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/Nakonechnik/SeaBattle/internal/dependencies/clock"
	"github.com/Nakonechnik/SeaBattle/internal/dependencies/random"
	"github.com/Nakonechnik/SeaBattle/internal/server"
	"github.com/Nakonechnik/SeaBattle/internal/services/game"
	"github.com/Nakonechnik/SeaBattle/internal/services/lobby"
	"github.com/Nakonechnik/SeaBattle/internal/services/timer"
	"github.com/Nakonechnik/SeaBattle/internal/storage"
	"github.com/Nakonechnik/SeaBattle/internal/storage/memory"
	redisstorage "github.com/Nakonechnik/SeaBattle/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	TurnTimers      *timer.Service
	GameController  *game.Controller
	LobbyController *lobby.Controller
	Server          *server.Server
}

// Config holds configuration for the application factory
type Config struct {
	// ServerConfig holds the TCP listener settings (optional)
	// If zero value, defaults to server.DefaultConfig()
	ServerConfig server.Config
	// TurnBudget is the per-turn time limit (optional)
	// If zero, defaults to timer.DefaultTurnBudget
	TurnBudget time.Duration
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	serverCfg := cfg.ServerConfig
	if serverCfg == (server.Config{}) {
		serverCfg = server.DefaultConfig()
	}

	return newWithDependencies(store, clk, rnd, serverCfg, cfg.TurnBudget, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	serverCfg server.Config,
	turnBudget time.Duration,
	logger *slog.Logger,
) *App {
	// Create services
	turnTimers := timer.New(turnBudget, clk, logger)
	gameController := game.NewController(store, turnTimers, clk, rnd, logger)
	lobbyController := lobby.NewController(store, gameController, clk, logger)
	srv := server.NewServer(serverCfg, store, lobbyController, gameController, turnTimers, clk, logger)

	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		TurnTimers:      turnTimers,
		GameController:  gameController,
		LobbyController: lobbyController,
		Server:          srv,
	}
}
