// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "HABITTA"

const (
	AppEnvDev  = "dev"
	AppEnvTest = "test"
	AppEnvProd = "prod"
)

type Config struct {
	App       AppConfig
	DB        DBConfig
	Auth      AuthConfig
	Lifecycle LifecycleConfig
	Telemetry TelemetryConfig
}

// Load reads an optional .env file, then the environment, and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

type AppConfig struct {
	Env       string `envconfig:"HABITTA_APP_ENV" default:"dev" validate:"oneof=dev test prod"`
	Port      int    `envconfig:"HABITTA_APP_PORT" default:"8080" validate:"min=1,max=65535"`
	LogLevel  string `envconfig:"HABITTA_LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"HABITTA_LOG_FORMAT" default:"json" validate:"oneof=json console"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path string `envconfig:"HABITTA_DB_PATH" default:"habitta.db" validate:"required"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"HABITTA_JWT_SECRET" required:"true" validate:"min=16"`
	Issuer    string        `envconfig:"HABITTA_JWT_ISSUER" default:"habitta" validate:"required"`
	TokenTTL  time.Duration `envconfig:"HABITTA_JWT_TTL" default:"24h" validate:"gt=0"`
}

// LifecycleConfig controls how status changes propagate.
type LifecycleConfig struct {
	// AtomicEffects commits property, payment and review writes with the status.
	AtomicEffects bool   `envconfig:"HABITTA_LIFECYCLE_ATOMIC_EFFECTS" default:"true"`
	Currency      string `envconfig:"HABITTA_PAYMENT_CURRENCY" default:"COP" validate:"len=3,uppercase"`
	QueueWorkers  int    `envconfig:"HABITTA_QUEUE_WORKERS" default:"2" validate:"min=1,max=32"`
}

type TelemetryConfig struct {
	ServiceName    string `envconfig:"HABITTA_OTEL_SERVICE_NAME" default:"habitta" validate:"required"`
	ServiceVersion string `envconfig:"HABITTA_OTEL_SERVICE_VERSION" default:"0.1.0"`
	Environment    string `envconfig:"HABITTA_OTEL_ENVIRONMENT" default:"development"`
	Exporter       string `envconfig:"HABITTA_OTEL_EXPORTER" default:"stdout" validate:"oneof=stdout otlp none"`
	Endpoint       string `envconfig:"HABITTA_OTEL_ENDPOINT"`
}
