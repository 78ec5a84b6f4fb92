// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	DB          DBConfig
	JWT         JWTConfig
	Log         LogConfig
	Fiscal      FiscalConfig
	Idempotency IdempotencyConfig
	Outbox      OutboxConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds token validation settings.
type JWTConfig struct {
	Secret         string        `mapstructure:"secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_ttl"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// FiscalConfig holds financial-year settings.
type FiscalConfig struct {
	// YearStartMonth is 1..12; April for the Indian GST regime.
	YearStartMonth int `mapstructure:"year_start_month"`
}

// IdempotencyConfig holds idempotency-key settings.
type IdempotencyConfig struct {
	// TTL is how long completed keys replay; zero disables the middleware.
	TTL time.Duration `mapstructure:"ttl"`
}

// OutboxConfig holds relay worker settings.
type OutboxConfig struct {
	BatchSize    int           `mapstructure:"batch_size"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	// CleanupInterval is how often expired idempotency keys are purged.
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// Load reads configuration from environment variables with the FINBOOKS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FINBOOKS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "finbooks")
	v.SetDefault("db.password", "finbooks_secret")
	v.SetDefault("db.name", "finbooks_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_conns", 25)
	v.SetDefault("db.min_conns", 5)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "finbooks")
	v.SetDefault("jwt.access_ttl", "15m")

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", true)

	// Fiscal defaults
	v.SetDefault("fiscal.year_start_month", 4)

	// Idempotency defaults
	v.SetDefault("idempotency.ttl", "24h")

	// Outbox defaults
	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.poll_interval", "5s")
	v.SetDefault("outbox.cleanup_interval", "1h")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "FINBOOKS_SERVER_PORT",
		"server.read_timeout":      "FINBOOKS_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "FINBOOKS_SERVER_WRITE_TIMEOUT",
		"server.shutdown_timeout":  "FINBOOKS_SERVER_SHUTDOWN_TIMEOUT",
		"server.environment":       "FINBOOKS_SERVER_ENVIRONMENT",
		"db.host":                  "FINBOOKS_DB_HOST",
		"db.port":                  "FINBOOKS_DB_PORT",
		"db.user":                  "FINBOOKS_DB_USER",
		"db.password":              "FINBOOKS_DB_PASSWORD",
		"db.name":                  "FINBOOKS_DB_NAME",
		"db.sslmode":               "FINBOOKS_DB_SSLMODE",
		"db.max_conns":             "FINBOOKS_DB_MAX_CONNS",
		"db.min_conns":             "FINBOOKS_DB_MIN_CONNS",
		"jwt.secret":               "FINBOOKS_JWT_SECRET",
		"jwt.issuer":               "FINBOOKS_JWT_ISSUER",
		"jwt.access_ttl":           "FINBOOKS_JWT_ACCESS_TTL",
		"log.level":                "FINBOOKS_LOG_LEVEL",
		"log.development":          "FINBOOKS_LOG_DEVELOPMENT",
		"fiscal.year_start_month":  "FINBOOKS_FISCAL_YEAR_START_MONTH",
		"idempotency.ttl":          "FINBOOKS_IDEMPOTENCY_TTL",
		"outbox.batch_size":        "FINBOOKS_OUTBOX_BATCH_SIZE",
		"outbox.poll_interval":     "FINBOOKS_OUTBOX_POLL_INTERVAL",
		"outbox.cleanup_interval":  "FINBOOKS_OUTBOX_CLEANUP_INTERVAL",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			Environment:     v.GetString("server.environment"),
		},
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
			MaxConns: v.GetInt32("db.max_conns"),
			MinConns: v.GetInt32("db.min_conns"),
		},
		JWT: JWTConfig{
			Secret:         v.GetString("jwt.secret"),
			Issuer:         v.GetString("jwt.issuer"),
			AccessTokenTTL: v.GetDuration("jwt.access_ttl"),
		},
		Log: LogConfig{
			Level:       v.GetString("log.level"),
			Development: v.GetBool("log.development"),
		},
		Fiscal: FiscalConfig{
			YearStartMonth: v.GetInt("fiscal.year_start_month"),
		},
		Idempotency: IdempotencyConfig{
			TTL: v.GetDuration("idempotency.ttl"),
		},
		Outbox: OutboxConfig{
			BatchSize:       v.GetInt("outbox.batch_size"),
			PollInterval:    v.GetDuration("outbox.poll_interval"),
			CleanupInterval: v.GetDuration("outbox.cleanup_interval"),
		},
	}

	return cfg, nil
}
