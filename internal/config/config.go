package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultJWTSecret          = "change-me-jwt-secret"
	defaultExchangeCodePepper = "change-me-exchange-pepper"

	StorageLocal = "local"
	StorageS3    = "s3"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Addr   string `env:"HTTP_ADDR" envDefault:":3000"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"roflexi.db"`

	JWTSecret         string        `env:"JWT_SECRET" envDefault:"change-me-jwt-secret"`
	BootstrapTokenTTL time.Duration `env:"BOOTSTRAP_TOKEN_TTL" envDefault:"1h"`
	SessionTokenTTL   time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"24h"`

	ExchangeCodeTTL    time.Duration `env:"EXCHANGE_CODE_TTL" envDefault:"5m"`
	ExchangeCodePepper string        `env:"EXCHANGE_CODE_PEPPER" envDefault:"change-me-exchange-pepper"`
	HandoffRequireCode bool          `env:"HANDOFF_REQUIRE_CODE" envDefault:"true"`
	IdempotencyTTL     time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`

	MaxImageBytes    int64  `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
	PhoneCountryCode string `env:"PHONE_COUNTRY_CODE" envDefault:"+40"`

	StorageDriver    string `env:"STORAGE_DRIVER" envDefault:"local"`
	UploadsDir       string `env:"UPLOADS_DIR" envDefault:"./public/uploads"`
	UploadsURLPrefix string `env:"UPLOADS_URL_PREFIX" envDefault:"/uploads"`
	S3Endpoint       string `env:"S3_ENDPOINT"`
	S3Region         string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Bucket         string `env:"S3_BUCKET"`
	S3AccessKey      string `env:"S3_ACCESS_KEY"`
	S3SecretKey      string `env:"S3_SECRET_KEY"`

	RedisAddrs    []string `env:"REDIS_ADDR" envSeparator:","`
	RedisPassword string   `env:"REDIS_PASSWORD"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	OTelEndpoint string `env:"OTEL_ENDPOINT"`

	OrphanGracePeriod time.Duration `env:"ORPHAN_GRACE_PERIOD" envDefault:"15m"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AppEnv = strings.ToLower(strings.TrimSpace(cfg.AppEnv))
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProdLike reports whether the environment must refuse development defaults.
func (c *Config) IsProdLike() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.BootstrapTokenTTL <= 0 {
		return fmt.Errorf("BOOTSTRAP_TOKEN_TTL must be > 0")
	}
	if cfg.SessionTokenTTL <= 0 {
		return fmt.Errorf("SESSION_TOKEN_TTL must be > 0")
	}
	if cfg.ExchangeCodeTTL <= 0 {
		return fmt.Errorf("EXCHANGE_CODE_TTL must be > 0")
	}
	if cfg.IdempotencyTTL <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL must be > 0")
	}
	if cfg.MaxImageBytes <= 0 {
		return fmt.Errorf("MAX_IMAGE_BYTES must be > 0")
	}
	if !strings.HasPrefix(cfg.PhoneCountryCode, "+") {
		return fmt.Errorf("PHONE_COUNTRY_CODE must start with +")
	}
	if !strings.HasPrefix(cfg.UploadsURLPrefix, "/") {
		return fmt.Errorf("UPLOADS_URL_PREFIX must start with /")
	}

	switch cfg.StorageDriver {
	case StorageLocal:
		if strings.TrimSpace(cfg.UploadsDir) == "" {
			return fmt.Errorf("UPLOADS_DIR must not be empty")
		}
	case StorageS3:
		if cfg.S3Endpoint == "" || cfg.S3Bucket == "" {
			return fmt.Errorf("S3_ENDPOINT and S3_BUCKET are required when STORAGE_DRIVER=s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of: local, s3")
	}

	if isProdLike(cfg.AppEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.ExchangeCodePepper, defaultExchangeCodePepper) {
			return fmt.Errorf("in prod/release EXCHANGE_CODE_PEPPER must be set and not default")
		}
		if len(cfg.CORSAllowedOrigins) == 1 && cfg.CORSAllowedOrigins[0] == "*" {
			return fmt.Errorf("in prod/release CORS_ALLOWED_ORIGINS must list explicit origins")
		}
	}

	return nil
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}
