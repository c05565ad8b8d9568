package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// StoreKind selects the persistence backend.
type StoreKind string

const (
	StorePostgres StoreKind = "postgres"
	StoreMongo    StoreKind = "mongo"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	JWTSecret       string        `env:"JWT_SECRET"`
	JWTIssuer       string        `env:"JWT_ISSUER,       default=user-service"`
	TokenTTL        time.Duration `env:"TOKEN_TTL,        default=1h"`
	AdminRole       string        `env:"ADMIN_ROLE,       default=admin"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	StoreKind StoreKind     `env:"STORE_KIND, default=postgres"`
	DBTimeout time.Duration `env:"DB_TIMEOUT, default=5s"`

	Postgres PostgresConfig
	Mongo    MongoConfig
	Redis    RedisConfig
}

type PostgresConfig struct {
	Host     string `env:"PG_HOST,      default=localhost"`
	Port     int    `env:"PG_PORT,      default=5432"`
	User     string `env:"PG_USER,      default=postgres"`
	Password string `env:"PG_PASSWORD"`
	Database string `env:"PG_DATABASE,  default=users"`
	SSLMode  string `env:"PG_SSLMODE,   default=disable"`
	MaxConns int32  `env:"PG_MAX_CONNS, default=10"`
	MinConns int32  `env:"PG_MIN_CONNS, default=1"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=users"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	Timeout  time.Duration `env:"CACHE_TIMEOUT,  default=250ms"`
	TTL      time.Duration `env:"CACHE_TTL,      default=15m"`
}

// IsDevelopment reports whether the service runs with developer defaults
// (pretty logs, verbose errors in the console).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.StoreKind {
	case StorePostgres, StoreMongo:
	default:
		errs = append(errs, fmt.Errorf("STORE_KIND %q is not one of %q, %q", c.StoreKind, StorePostgres, StoreMongo))
	}
	if c.AdminRole == "" {
		errs = append(errs, errors.New("ADMIN_ROLE must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if c.DBTimeout <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT must be positive"))
	}
	if c.Redis.Timeout <= 0 {
		errs = append(errs, errors.New("CACHE_TIMEOUT must be positive"))
	}
	if c.Redis.TTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// Load reads configuration from environment variables using go-envconfig.
// Variables found in a local .env file are applied first without overriding
// the real environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
