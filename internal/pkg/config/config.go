package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Storage drivers.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	DefaultLocale string `env:"DEFAULT_LOCALE, default=en"`
	StorageDriver string `env:"STORAGE_DRIVER, default=redis"`
	AuditWorkers  int    `env:"AUDIT_WORKERS,  default=4"`

	Session SessionConfig
	API     APIConfig
	Mongo   MongoConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	Secret     string        `env:"SESSION_SECRET"`
	CookieName string        `env:"SESSION_COOKIE, default=console_session"`
	TTL        time.Duration `env:"SESSION_TTL,    default=12h"`
}

type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL, default=http://localhost:5000"`
	Timeout time.Duration `env:"API_TIMEOUT,  default=10s"`
}

type MongoConfig struct {
	URI            string        `env:"MONGO_URI,       default=mongodb://localhost:27017"`
	Database       string        `env:"MONGO_DB,        default=admin_console"`
	AuditRetention time.Duration `env:"AUDIT_RETENTION, default=2160h"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("SESSION_SECRET must be at least 32 bytes"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	switch c.StorageDriver {
	case StorageRedis, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageRedis, StorageMemory, c.StorageDriver))
	}
	if c.StorageDriver == StorageMemory && c.IsProduction() {
		errs = append(errs, errors.New("STORAGE_DRIVER=memory is not allowed in production"))
	}
	switch c.DefaultLocale {
	case "en", "ar":
	default:
		errs = append(errs, fmt.Errorf("DEFAULT_LOCALE must be en or ar, got %q", c.DefaultLocale))
	}
	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API_BASE_URL is required"))
	}
	return errors.Join(errs...)
}
