package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"optiplan/auth/internal/cache"
	"optiplan/auth/internal/config"
	"optiplan/auth/internal/repository"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Environment: "test",
		Auth: config.AuthConfig{
			Secret:          "0123456789abcdef0123456789abcdef",
			BaseURL:         "http://localhost:8080",
			SessionLifetime: 7 * 24 * time.Hour,
			UpdateAge:       24 * time.Hour,
			CacheTTL:        5 * time.Minute,
			CookiePrefix:    "optiplan",
			VerificationTTL: time.Hour,
		},
	}
}

type fixture struct {
	store    *repository.Memory
	auth     *AuthService
	sessions *SessionService
	mailer   *captureMailer
	cfg      *config.AppConfig
}

type captureMailer struct {
	email string
	token string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, email string, token string) error {
	m.email = email
	m.token = token
	return nil
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testConfig()
	store := repository.NewMemory()
	mailer := &captureMailer{}

	sessions := NewSessionService(store, store, cache.NewRedisDenylist(client), cfg, zerolog.Nop())
	auth, err := NewAuthService(store, store, store, sessions, mailer, cfg, zerolog.Nop())
	require.NoError(t, err)

	return &fixture{store: store, auth: auth, sessions: sessions, mailer: mailer, cfg: cfg}
}
