package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"

	"github.com/josh-kwaku/shop-ledger/internal/lockout"
)

const (
	LockoutStoreMemory = "memory"
	LockoutStoreSQLite = "sqlite"
)

type Config struct {
	DatabaseURL string        `env:"DATABASE_URL,required,notEmpty"`
	JWTSecret   string        `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"12h"`
	Port        int           `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string        `env:"APP_ENV" envDefault:"production"`

	// RemoteStoreURL is the external store every submitted action is written
	// to. Empty disables the remote write.
	RemoteStoreURL  string        `env:"REMOTE_STORE_URL"`
	PersistDebounce time.Duration `env:"PERSIST_DEBOUNCE" envDefault:"700ms"`

	LockoutThreshold  int             `env:"LOCKOUT_THRESHOLD" envDefault:"4"`
	LockoutDurations  []time.Duration `env:"LOCKOUT_DURATIONS" envDefault:"1m,5m,15m,30m,1h" envSeparator:","`
	LockoutStore      string          `env:"LOCKOUT_STORE" envDefault:"memory"`
	LockoutSQLitePath string          `env:"LOCKOUT_SQLITE_PATH" envDefault:"lockout.db"`
	LockoutIdleTTL    time.Duration   `env:"LOCKOUT_IDLE_TTL" envDefault:"24h"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	if c.LockoutStore != LockoutStoreMemory && c.LockoutStore != LockoutStoreSQLite {
		return fmt.Errorf("LOCKOUT_STORE must be %q or %q, got %q", LockoutStoreMemory, LockoutStoreSQLite, c.LockoutStore)
	}
	if c.PersistDebounce <= 0 {
		return fmt.Errorf("PERSIST_DEBOUNCE must be positive")
	}
	if err := c.LockoutPolicy().Validate(); err != nil {
		return err
	}
	return nil
}

func (c Config) LockoutPolicy() lockout.Policy {
	return lockout.Policy{Threshold: c.LockoutThreshold, Durations: c.LockoutDurations}
}
