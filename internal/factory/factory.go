package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/kpane/banktally/internal/dependencies/clock"
	"github.com/kpane/banktally/internal/dependencies/random"
	"github.com/kpane/banktally/internal/realtime"
	realtimememory "github.com/kpane/banktally/internal/realtime/memory"
	"github.com/kpane/banktally/internal/realtime/redispubsub"
	"github.com/kpane/banktally/internal/services/catchup"
	"github.com/kpane/banktally/internal/services/room"
	"github.com/kpane/banktally/internal/services/syncer"
	"github.com/kpane/banktally/internal/storage"
	"github.com/kpane/banktally/internal/storage/memory"
	redisstorage "github.com/kpane/banktally/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage and realtime
	Storage storage.Storage
	Bus     realtime.Bus

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	RoomController *room.Controller
	Synchronizer   *syncer.Synchronizer
	Proposer       *catchup.Proposer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis").
	// The redis backend also carries the realtime bus over redis pub/sub;
	// the memory backend uses the in-process bus.
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	var store storage.Storage
	var bus realtime.Bus

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
		bus = realtimememory.New(logger)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		bus = redispubsub.New(redisStore.Client(), logger)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, bus, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, bus realtime.Bus, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	return &App{
		Storage:        store,
		Bus:            bus,
		Clock:          clk,
		Random:         rnd,
		RoomController: room.NewController(store, bus, clk, rnd, logger),
		Synchronizer:   syncer.New(store, bus, logger),
		Proposer:       catchup.NewProposer(bus, clk, logger),
	}
}
