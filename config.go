package sso

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/sethvargo/go-envconfig"
)

// Config carries everything the core needs from its environment. It is an
// explicit value passed into constructors, not a process-wide singleton,
// so isolated parallel instances stay cheap to build in tests.
type Config struct {
	// AuthServiceURL is the remote authentication endpoint tokens are
	// resolved against.
	AuthServiceURL string `env:"SSO_AUTH_SERVICE_URL"`
	// AuthTimeout bounds the remote-authentication round-trip.
	AuthTimeout time.Duration `env:"SSO_AUTH_TIMEOUT, default=10s"`

	// SigningKey is the symmetric session-signing secret. Provisioned
	// from the environment; never embed it in source.
	SigningKey string `env:"SSO_SIGNING_KEY"`
	// TokenIssuer is the issuer claim on minted session tokens.
	TokenIssuer string `env:"SSO_TOKEN_ISSUER, default=Auth Service"`

	DatabaseDSN string `env:"SSO_DATABASE_DSN"`

	// Connection pool knobs.
	PoolMaxOpen     int           `env:"SSO_DB_POOL_MAX_OPEN,     default=20"`
	PoolMaxIdle     int           `env:"SSO_DB_POOL_MAX_IDLE,     default=10"`
	PoolMaxLifetime time.Duration `env:"SSO_DB_POOL_MAX_LIFETIME, default=30m"`

	LogLevel string `env:"SSO_LOG_LEVEL, default=info"`
}

// LoadConfig reads configuration from the environment and fails fast when
// a required value is absent or malformed.
func LoadConfig(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces presence and shape of the required values.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.AuthServiceURL, validation.Required, is.URL),
		validation.Field(&c.SigningKey, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.PoolMaxOpen, validation.Required, validation.Min(1)),
		validation.Field(&c.PoolMaxIdle, validation.Min(0)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration")
	}
	return nil
}
