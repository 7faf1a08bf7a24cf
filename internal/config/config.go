// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jason-s-yu/park/internal/chain"
	"github.com/sirupsen/logrus"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds everything the binaries read from the environment. A .env file is
// picked up by godotenv/autoload in each main package.
type Config struct {
	Port     string
	Storage  string
	LogLevel logrus.Level

	Postgres PostgresConfig
	Redis    RedisConfig

	Historian HistorianConfig

	// ProgramID scopes all derived addresses of this deployment.
	ProgramID chain.Address
	// SetupAuthority is the only identity that may initialize the registry. It is
	// required with postgres storage; when nil, initialization is refused.
	SetupAuthority *chain.Address

	SweepInterval time.Duration

	// JWTPrivateKeyPath and JWTPublicKeyPath hold raw ed25519 keys. When either is
	// empty a key pair is generated at startup and sessions do not survive restarts.
	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	// TokenExpiry is the JWT lifetime; 0 means tokens never expire.
	TokenExpiry time.Duration
	// DevLedger exposes mint/issue endpoints for key-controlled tokens such as the entry fee.
	DevLedger bool
}

type PostgresConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// ConnString builds the pgx connection URL.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", p.User, p.Password, p.Host, p.Port, p.Database)
}

type RedisConfig struct {
	// Addr is empty when event publishing is disabled.
	Addr  string
	DB    int
	Queue string
}

type HistorianConfig struct {
	BatchSize  int
	FlushDelay time.Duration
}

// defaultProgramID is used when PARK_PROGRAM_ID is unset.
const defaultProgramID = "PARKv1eW1uZLHJ7R5S5A1cHZb9VrTx5FJ4tJ7xZ8d7F"

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getEnv("PORT", "8080"),
		Storage: getEnv("PARK_STORAGE", StorageMemory),
		Postgres: PostgresConfig{
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Database: getEnv("PG_DATABASE", "park"),
		},
		Redis: RedisConfig{
			Addr:  os.Getenv("REDIS_ADDR"),
			DB:    getEnvInt("REDIS_DB", 0),
			Queue: getEnv("HISTORIAN_QUEUE_NAME", "park_room_events"),
		},
		Historian: HistorianConfig{
			BatchSize:  getEnvInt("HISTORIAN_BATCH_SIZE", 20),
			FlushDelay: time.Duration(getEnvInt("HISTORIAN_FLUSH_MS", 500)) * time.Millisecond,
		},
		JWTPrivateKeyPath: os.Getenv("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  os.Getenv("JWT_PUBLIC_KEY_PATH"),
		DevLedger:         getEnvBool("PARK_DEV_LEDGER", false),
	}

	if cfg.Storage != StorageMemory && cfg.Storage != StoragePostgres {
		return nil, fmt.Errorf("invalid PARK_STORAGE %q: want %q or %q", cfg.Storage, StorageMemory, StoragePostgres)
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	cfg.ProgramID, err = chain.ParseAddress(getEnv("PARK_PROGRAM_ID", defaultProgramID))
	if err != nil {
		return nil, fmt.Errorf("invalid PARK_PROGRAM_ID: %w", err)
	}

	if s := os.Getenv("PARK_SETUP_AUTHORITY"); s != "" {
		setup, err := chain.ParseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("invalid PARK_SETUP_AUTHORITY: %w", err)
		}
		cfg.SetupAuthority = &setup
	}
	if cfg.SetupAuthority == nil && cfg.Storage == StoragePostgres {
		return nil, fmt.Errorf("PARK_SETUP_AUTHORITY is required with %s storage", StoragePostgres)
	}

	cfg.SweepInterval, err = time.ParseDuration(getEnv("PARK_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PARK_SWEEP_INTERVAL: %w", err)
	}

	cfg.TokenExpiry, err = parseTokenExpiry(os.Getenv("TOKEN_EXPIRE_TIME"))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Address returns the listen address.
func (c *Config) Address() string {
	return ":" + c.Port
}

// parseTokenExpiry accepts a Go duration, or "never"/"0"/"" for tokens without expiry.
func parseTokenExpiry(s string) (time.Duration, error) {
	if s == "never" || s == "0" || s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token expire time: %w", err)
	}
	return d, nil
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
