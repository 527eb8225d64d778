package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "account-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.True(t, cfg.App.Development())

	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTokenTTL())
	assert.Equal(t, "/auth/refresh", cfg.Auth.RefreshCookiePath)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)

	// development fills in placeholder secrets
	assert.NotEmpty(t, cfg.Auth.AccessTokenSecret)
	assert.NotEmpty(t, cfg.Auth.RefreshTokenSecret)
	assert.NotEqual(t, cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret)

	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 5, cfg.RateLimit.Login.Requests)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.Login.Window)
	assert.Equal(t, 2, cfg.RateLimit.Register.Requests)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_ACCESS_TOKEN_SECRET", "prod-access")
	t.Setenv("AUTH_REFRESH_TOKEN_SECRET", "prod-refresh")
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "15")
	t.Setenv("RATE_LIMIT_LOGIN_REQUESTS", "3")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.App.Development())
	assert.Equal(t, "prod-access", cfg.Auth.AccessTokenSecret)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL())
	assert.Equal(t, 3, cfg.RateLimit.Login.Requests)
}
