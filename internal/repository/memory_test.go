package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optiplan/auth/internal/models"
)

func seedUser(t *testing.T, store *Memory, id string, email string) models.User {
	t.Helper()
	user := models.User{ID: id, Email: email, DisplayName: "Test", Role: models.DefaultRole}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestMemoryUserUniqueEmail(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	seedUser(t, store, "u1", "alice@example.com")

	err := store.CreateUser(ctx, models.User{ID: "u2", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.UserByEmail(ctx, "bob@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryAccountRequiresUser(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	err := store.CreateAccount(ctx, models.Account{ID: "a1", UserID: "ghost", Provider: models.ProviderCredential})
	assert.ErrorIs(t, err, ErrNotFound)

	seedUser(t, store, "u1", "alice@example.com")
	hash := "$argon2id$..."
	require.NoError(t, store.CreateAccount(ctx, models.Account{
		ID: "a1", UserID: "u1", Provider: models.ProviderCredential, PasswordHash: &hash,
	}))

	account, err := store.AccountByUserAndProvider(ctx, "u1", models.ProviderCredential)
	require.NoError(t, err)
	assert.Equal(t, "a1", account.ID)

	_, err = store.AccountByUserAndProvider(ctx, "u1", models.ProviderGoogle)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionTokenUnique(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedUser(t, store, "u1", "alice@example.com")

	hash := []byte("token-hash")
	session := models.Session{
		ID: "s1", UserID: "u1", TokenHash: hash,
		ExpiresAt: time.Now().Add(time.Hour), LastRenewedAt: time.Now(),
	}
	require.NoError(t, store.CreateSession(ctx, session))

	err := store.CreateSession(ctx, models.Session{ID: "s2", UserID: "u1", TokenHash: hash})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryRenewSessionConditional(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedUser(t, store, "u1", "alice@example.com")

	issued := time.Now().Truncate(time.Second)
	session := models.Session{
		ID: "s1", UserID: "u1", TokenHash: []byte("h"),
		ExpiresAt: issued.Add(time.Hour), LastRenewedAt: issued,
	}
	require.NoError(t, store.CreateSession(ctx, session))

	renewedAt := issued.Add(30 * time.Minute)
	won, err := store.RenewSession(ctx, "s1", issued, renewedAt, renewedAt.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, won)

	// Second caller raced with the stale timestamp and must lose.
	won, err = store.RenewSession(ctx, "s1", issued, renewedAt.Add(time.Minute), renewedAt.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, won)

	got, err := store.SessionByTokenHash(ctx, []byte("h"))
	require.NoError(t, err)
	assert.True(t, got.LastRenewedAt.Equal(renewedAt))
}

func TestMemoryDeleteUserCascades(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedUser(t, store, "u1", "alice@example.com")

	hash := "x"
	require.NoError(t, store.CreateAccount(ctx, models.Account{ID: "a1", UserID: "u1", Provider: models.ProviderCredential, PasswordHash: &hash}))
	require.NoError(t, store.CreateSession(ctx, models.Session{ID: "s1", UserID: "u1", TokenHash: []byte("h"), ExpiresAt: time.Now().Add(time.Hour), LastRenewedAt: time.Now()}))

	require.NoError(t, store.DeleteUser(ctx, "u1"))

	_, err := store.AccountByUserAndProvider(ctx, "u1", models.ProviderCredential)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.SessionByTokenHash(ctx, []byte("h"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDeleteExpiredSessions(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	seedUser(t, store, "u1", "alice@example.com")

	now := time.Now()
	require.NoError(t, store.CreateSession(ctx, models.Session{ID: "dead", UserID: "u1", TokenHash: []byte("d"), ExpiresAt: now.Add(-time.Minute), LastRenewedAt: now.Add(-time.Hour)}))
	require.NoError(t, store.CreateSession(ctx, models.Session{ID: "live", UserID: "u1", TokenHash: []byte("l"), ExpiresAt: now.Add(time.Hour), LastRenewedAt: now}))

	removed, err := store.DeleteExpiredSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, err = store.SessionByTokenHash(ctx, []byte("d"))
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.SessionByTokenHash(ctx, []byte("l"))
	assert.NoError(t, err)
}

func TestMemoryConsumeVerificationSingleUse(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateVerification(ctx, models.Verification{
		ID: "v1", Identifier: "u1", TokenHash: []byte("t"), ExpiresAt: now.Add(time.Hour),
	}))

	consumed, err := store.ConsumeVerification(ctx, "v1", now)
	require.NoError(t, err)
	assert.True(t, consumed)

	consumed, err = store.ConsumeVerification(ctx, "v1", now)
	require.NoError(t, err)
	assert.False(t, consumed, "verification must be single use")
}

func TestMemoryConsumeVerificationExpired(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, store.CreateVerification(ctx, models.Verification{
		ID: "v1", Identifier: "u1", TokenHash: []byte("t"), ExpiresAt: now.Add(-time.Minute),
	}))

	consumed, err := store.ConsumeVerification(ctx, "v1", now)
	require.NoError(t, err)
	assert.False(t, consumed)
}
