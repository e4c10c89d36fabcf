package config

import (
	"errors"
	"fmt"
	"time"

	pkgconfig "github.com/Douglas360/auction-intel-estate-sub000/pkg/config"
)

// ServiceName is the config file name and the environment variable prefix
// (BILLING_STRIPE_SECRET_KEY, BILLING_DATABASE_HOST, ...).
const ServiceName = "billing"

type Config struct {
	Service  ServiceConfig  `mapstructure:"service"`
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

var defaults = map[string]interface{}{
	"service.name":        "auction-billing",
	"service.environment": "development",

	"server.http.host":          "0.0.0.0",
	"server.http.port":          8080,
	"server.http.read_timeout":  "15s",
	"server.http.write_timeout": "15s",
	"server.http.body_limit":    "1M",
	"server.http.cors_origins":  []string{"*"},
	"server.shutdown_timeout":   "10s",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.name":               "auction",
	"database.user":               "postgres",
	"database.password":           "",
	"database.ssl_mode":           "disable",
	"database.max_open_conns":     20,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  "30m",
	"database.conn_max_idle_time": "5m",
	"database.slow_threshold":     "200ms",

	"stripe.secret_key":          "",
	"stripe.webhook_secret":      "",
	"stripe.timeout":             "5s",
	"stripe.max_network_retries": 0,
	"stripe.webhook_max_bytes":   65536,
	"stripe.success_url":         "http://localhost:3000/subscription/success?session_id={CHECKOUT_SESSION_ID}",
	"stripe.cancel_url":          "http://localhost:3000/plans",
	"stripe.portal_return_url":   "http://localhost:3000/account",

	"auth.jwt_secret": "",
	"auth.jwks_url":   "",
	"auth.issuer":     "",
	"auth.admin_role": "admin",

	"redis.addr":     "",
	"redis.password": "",
	"redis.db":       0,
	"redis.channel":  "subscription.changed",

	"log.level":       "info",
	"log.format":      "json",
	"log.output":      "stdout",
	"log.file_path":   "",
	"log.development": false,

	"metrics.enabled": true,
	"metrics.path":    "/metrics",
}

// LoadConfig reads configs/billing.yaml (or CONFIG_PATH), .env and BILLING_*
// environment variables.
func LoadConfig() (*Config, error) {
	return LoadFile("")
}

// LoadFile is LoadConfig with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	v, err := pkgconfig.Load(pkgconfig.Options{
		ServiceName: ServiceName,
		File:        path,
		Defaults:    defaults,
		DotEnv:      []string{".env"},
	})
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the HTTP server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Stripe.SecretKey == "" {
		errs = append(errs, errors.New("stripe.secret_key is required"))
	}
	if c.Stripe.WebhookSecret == "" {
		errs = append(errs, errors.New("stripe.webhook_secret is required"))
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		errs = append(errs, errors.New("one of auth.jwt_secret or auth.jwks_url is required"))
	}
	if c.Stripe.Timeout <= 0 {
		errs = append(errs, errors.New("stripe.timeout must be positive"))
	}
	if c.Server.HTTP.Port <= 0 {
		errs = append(errs, fmt.Errorf("invalid server.http.port %d", c.Server.HTTP.Port))
	}
	return errors.Join(errs...)
}

// ShutdownTimeout falls back to ten seconds.
func (c *Config) ShutdownTimeout() time.Duration {
	if c.Server.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return c.Server.ShutdownTimeout
}
