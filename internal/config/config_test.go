package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *AppConfig {
	return &AppConfig{
		Environment: "development",
		Auth: AuthConfig{
			Secret:          "0123456789abcdef0123456789abcdef",
			BaseURL:         "http://localhost:8080",
			SessionLifetime: 168 * time.Hour,
			UpdateAge:       24 * time.Hour,
			CacheTTL:        5 * time.Minute,
			CookiePrefix:    "optiplan",
			VerificationTTL: time.Hour,
		},
	}
}

func TestValidateAccepts(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
	}{
		{"unknown environment", func(c *AppConfig) { c.Environment = "staging" }},
		{"short secret", func(c *AppConfig) { c.Auth.Secret = "too-short" }},
		{"empty base url", func(c *AppConfig) { c.Auth.BaseURL = "" }},
		{"relative base url", func(c *AppConfig) { c.Auth.BaseURL = "/auth" }},
		{"cache ttl not shorter than lifetime", func(c *AppConfig) { c.Auth.CacheTTL = c.Auth.SessionLifetime }},
		{"zero update age", func(c *AppConfig) { c.Auth.UpdateAge = 0 }},
		{"zero lifetime", func(c *AppConfig) { c.Auth.SessionLifetime = 0; c.Auth.CacheTTL = -time.Minute }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestCookieNames(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "optiplan.session_token", cfg.SessionCookieName())
	assert.Equal(t, "optiplan.session_data", cfg.CacheCookieName())
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPTIPLAN_AUTH_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("OPTIPLAN_AUTH_BASEURL", "http://localhost:8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionLifetime)
	assert.Equal(t, 24*time.Hour, cfg.Auth.UpdateAge)
	assert.Equal(t, 5*time.Minute, cfg.Auth.CacheTTL)
	assert.Equal(t, "optiplan", cfg.Auth.CookiePrefix)
	assert.False(t, cfg.IsProduction())
}
