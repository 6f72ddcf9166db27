package sso_test

import (
	"context"
	"testing"
	"time"

	sso "github.com/flowersso/go-sso"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SSO_AUTH_SERVICE_URL", "http://auth.internal:8080/api/auth/verify")
	t.Setenv("SSO_SIGNING_KEY", "test-signing-key-0123456789abcdef")
	t.Setenv("SSO_DATABASE_DSN", "file::memory:?cache=shared")
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults are applied", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := sso.LoadConfig(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 10*time.Second, cfg.AuthTimeout)
		assert.Equal(t, "Auth Service", cfg.TokenIssuer)
		assert.Equal(t, 20, cfg.PoolMaxOpen)
		assert.Equal(t, 10, cfg.PoolMaxIdle)
		assert.Equal(t, 30*time.Minute, cfg.PoolMaxLifetime)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("Explicit values override defaults", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SSO_AUTH_TIMEOUT", "3s")
		t.Setenv("SSO_DB_POOL_MAX_OPEN", "5")

		cfg, err := sso.LoadConfig(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 3*time.Second, cfg.AuthTimeout)
		assert.Equal(t, 5, cfg.PoolMaxOpen)
	})

	t.Run("Missing signing key fails fast", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SSO_SIGNING_KEY", "")

		_, err := sso.LoadConfig(context.Background())
		assert.Error(t, err)
		assert.True(t, sso.IsValidationError(err))
	})

	t.Run("Short signing key is rejected", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SSO_SIGNING_KEY", "too-short")

		_, err := sso.LoadConfig(context.Background())
		assert.Error(t, err)
		assert.True(t, sso.IsValidationError(err))
	})

	t.Run("Malformed duration fails fast", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SSO_AUTH_TIMEOUT", "not-a-duration")

		_, err := sso.LoadConfig(context.Background())
		assert.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	valid := func() *sso.Config {
		return &sso.Config{
			AuthServiceURL:  "http://auth.internal:8080/api/auth/verify",
			SigningKey:      "test-signing-key-0123456789abcdef",
			DatabaseDSN:     "file::memory:?cache=shared",
			PoolMaxOpen:     20,
			PoolMaxIdle:     10,
			PoolMaxLifetime: 30 * time.Minute,
		}
	}

	t.Run("Well-formed config", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("Missing auth service url", func(t *testing.T) {
		cfg := valid()
		cfg.AuthServiceURL = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Missing database dsn", func(t *testing.T) {
		cfg := valid()
		cfg.DatabaseDSN = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("Zero pool size", func(t *testing.T) {
		cfg := valid()
		cfg.PoolMaxOpen = 0
		assert.Error(t, cfg.Validate())
	})
}
