package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Backend names accepted by StorageConfig.Backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config carries the tunables of the tracker. Zero-config embedding is
// supported via Default(); Load() layers environment variables on top.
type Config struct {
	// Namespace prefixes every storage key so several trackers can
	// share one backend.
	Namespace string

	// Catalog caps; zero means unlimited.
	MaxDrivers int
	MaxShops   int
	MaxDepots  int

	// HistoryLimit bounds the scan log, MovementLimit the ledger.
	// Oldest entries past the bound are dropped on append.
	HistoryLimit  int
	MovementLimit int

	// The synthetic depot every untracked pallet is assumed to start
	// from. It exists even when no depot record was ever created.
	DefaultDepotID   string
	DefaultDepotName string

	// LostAfter is how long a pallet may go unseen before it is
	// classified as lost.
	LostAfter time.Duration

	Storage StorageConfig
}

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	Backend string

	FileDir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresURL string
}

// Default returns the configuration matching the observed source
// system: drivers capped at 10, shops at 100, scan history bounded at
// 2000 entries, the movement log at 5000, lost after 30 days.
func Default() *Config {
	return &Config{
		Namespace:        "pt",
		MaxDrivers:       10,
		MaxShops:         100,
		MaxDepots:        0,
		HistoryLimit:     2000,
		MovementLimit:    5000,
		DefaultDepotID:   "dep_default",
		DefaultDepotName: "Main Depot",
		LostAfter:        30 * 24 * time.Hour,
		Storage: StorageConfig{
			Backend:   BackendMemory,
			FileDir:   "pallettrack-data",
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads configuration from the environment, consulting a .env file
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	cfg.Namespace = getEnv("PT_NAMESPACE", cfg.Namespace)
	cfg.MaxDrivers = getEnvInt("PT_MAX_DRIVERS", cfg.MaxDrivers)
	cfg.MaxShops = getEnvInt("PT_MAX_SHOPS", cfg.MaxShops)
	cfg.MaxDepots = getEnvInt("PT_MAX_DEPOTS", cfg.MaxDepots)
	cfg.HistoryLimit = getEnvInt("PT_HISTORY_LIMIT", cfg.HistoryLimit)
	cfg.MovementLimit = getEnvInt("PT_MOVEMENT_LIMIT", cfg.MovementLimit)
	cfg.DefaultDepotID = getEnv("PT_DEFAULT_DEPOT_ID", cfg.DefaultDepotID)
	cfg.DefaultDepotName = getEnv("PT_DEFAULT_DEPOT_NAME", cfg.DefaultDepotName)
	if days := getEnvInt("PT_LOST_AFTER_DAYS", 0); days > 0 {
		cfg.LostAfter = time.Duration(days) * 24 * time.Hour
	}

	cfg.Storage.Backend = getEnv("PT_STORAGE_BACKEND", cfg.Storage.Backend)
	cfg.Storage.FileDir = getEnv("PT_STORAGE_DIR", cfg.Storage.FileDir)
	cfg.Storage.RedisAddr = getEnv("PT_REDIS_ADDR", cfg.Storage.RedisAddr)
	cfg.Storage.RedisPassword = getEnv("PT_REDIS_PASSWORD", cfg.Storage.RedisPassword)
	cfg.Storage.RedisDB = getEnvInt("PT_REDIS_DB", cfg.Storage.RedisDB)
	cfg.Storage.PostgresURL = getEnv("PT_POSTGRES_URL", cfg.Storage.PostgresURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the repositories cannot honor.
func (c *Config) Validate() error {
	if c.Namespace == "" {
		return fmt.Errorf("config: namespace must not be empty")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("config: history limit must be positive, got %d", c.HistoryLimit)
	}
	if c.MovementLimit <= 0 {
		return fmt.Errorf("config: movement limit must be positive, got %d", c.MovementLimit)
	}
	if c.DefaultDepotID == "" {
		return fmt.Errorf("config: default depot id must not be empty")
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres:
	default:
		return fmt.Errorf("config: unknown storage backend %q", c.Storage.Backend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}
