// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env`
// file when one exists), loads them into structured Go types and
// validates that required values are present so the rest of the
// application can rely on them.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config.
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for optional blocks (observability, rate limiting).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before anything below reads it.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read with the MINIAPP_ prefix. A double underscore
	separates nesting levels, a single underscore stays part of the key:

	  MINIAPP_SERVER__READ_TIMEOUT -> server.read_timeout -> Config.Server.ReadTimeout

	The connection string variable used by the serverless
	deployment, DATABASE_URL, is honoured as well and maps to database.url.
*/

const (
	// EnvPrefix is the prefix every application env var carries.
	EnvPrefix = "MINIAPP_"

	// ServiceName tags logs, traces and New Relic data.
	ServiceName = "tg-miniapp"
)

// Config is the root configuration object for the application.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	RateLimit     RateLimitConfig      `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
//
// Either URL is set, or the discrete Host/Port/User/Password/Name parts are.
type DatabaseConfig struct {
	URL             string `koanf:"url" validate:"required_without=Host"`
	Host            string `koanf:"host" validate:"required_without=URL"`
	Port            int    `koanf:"port" validate:"required_with=Host"`
	User            string `koanf:"user" validate:"required_with=Host"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name" validate:"required_with=Host"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"min=0"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"min=0"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"min=0"`
}

// RedisConfig contains Redis connection details. Redis is optional: an empty
// Address disables rate limiting and the redis health check.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

const (
	// AuthStrategyHeader trusts the JSON identity in the X-Telegram-User header.
	AuthStrategyHeader = "header"
	// AuthStrategyInitData verifies the signed Mini App initData.
	AuthStrategyInitData = "init_data"
)

// AuthConfig selects how callers are identified.
//
// BotToken is a secret: it is the HMAC key material for initData verification.
type AuthConfig struct {
	Strategy string `koanf:"strategy" validate:"required,oneof=header init_data"`
	BotToken string `koanf:"bot_token" validate:"required_if=Strategy init_data"`
	// InitDataMaxAge is in seconds; 0 disables the auth_date freshness check.
	InitDataMaxAge int `koanf:"init_data_max_age" validate:"min=0"`
}

// RateLimitConfig is a fixed-window per-user limit enforced through Redis.
type RateLimitConfig struct {
	Enabled  bool `koanf:"enabled"`
	Requests int  `koanf:"requests" validate:"required_if=Enabled true"`
	// Window is in seconds.
	Window int `koanf:"window" validate:"required_if=Enabled true"`
}

// envKey converts a raw env var name into a koanf key path.
// It returns "" for variables that do not belong to the application,
// which tells the env provider to skip them.
func envKey(s string) string {
	if s == "DATABASE_URL" {
		return "database.url"
	}
	if !strings.HasPrefix(s, EnvPrefix) {
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// listKeys are read from the environment as comma-separated lists.
var listKeys = map[string]bool{
	"server.cors_allowed_origins":        true,
	"observability.health_checks.checks": true,
}

// envValue maps a variable to its koanf key and splits list values.
func envValue(name, value string) (string, any) {
	key := envKey(name)
	if key == "" || !listKeys[key] {
		return key, value
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return key, items
}

// defaults are applied before the environment so env values always win.
func defaults() map[string]any {
	return map[string]any{
		"primary.env":                 "development",
		"server.port":                 "8080",
		"server.read_timeout":         30,
		"server.write_timeout":        30,
		"server.idle_timeout":         60,
		"server.cors_allowed_origins": []string{"*"},
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     10,
		"database.max_idle_conns":     2,
		"database.conn_max_lifetime":  3600,
		"database.conn_max_idle_time": 300,
		"auth.strategy":               AuthStrategyHeader,
		"auth.init_data_max_age":      86400,
		"rate_limit.requests":         120,
		"rate_limit.window":           60,
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config, validates it, applies defaults and returns it.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	// The provider hands every variable to envValue; an empty key skips it.
	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	// Unmarshal decodes over the defaults, so observability values that are
	// not set in the environment keep their default.
	mainConfig := &Config{Observability: DefaultObservabilityConfig()}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if err := mainConfig.finalize(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// finalize validates the struct tags, injects the observability defaults and
// runs the observability checks that tags cannot express.
func (c *Config) finalize() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	// Service name and environment always follow the primary config so
	// logs and traces are labelled consistently.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env

	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("invalid observability config: %w", err)
	}

	return nil
}
