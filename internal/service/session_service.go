package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"optiplan/auth/internal/cache"
	"optiplan/auth/internal/config"
	"optiplan/auth/internal/ids"
	"optiplan/auth/internal/models"
	"optiplan/auth/internal/repository"
	"optiplan/auth/internal/security"
)

// SessionService is the session protocol core: it issues sessions on
// successful authentication, validates and renews them on each request,
// and revokes them on logout. A session moves Active → Expired or
// Active → Revoked; neither terminal state is resurrected.
type SessionService struct {
	sessions repository.SessionStore
	users    repository.UserStore
	denylist cache.Denylist
	cfg      *config.AppConfig
	log      zerolog.Logger

	// now is swappable so lifetime boundaries are testable.
	now func() time.Time
}

func NewSessionService(
	sessions repository.SessionStore,
	users repository.UserStore,
	denylist cache.Denylist,
	cfg *config.AppConfig,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		denylist: denylist,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Issued is everything a successful login hands back: the durable
// session, its bearer token and the short-lived signed cache token.
type Issued struct {
	Session    models.Session
	Token      string
	CacheToken string
}

func (s *SessionService) Issue(ctx context.Context, user models.User) (Issued, error) {
	token, tokenHash, err := security.GenerateSessionToken()
	if err != nil {
		return Issued{}, err
	}

	now := s.now()
	session := models.Session{
		ID:            ids.New(),
		UserID:        user.ID,
		TokenHash:     tokenHash,
		ExpiresAt:     now.Add(s.cfg.Auth.SessionLifetime),
		LastRenewedAt: now,
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return Issued{}, err
	}

	cacheToken, err := security.SignCacheToken(
		s.cfg.Auth.Secret, user.ID, session.ID, string(user.Role), s.cfg.Auth.CacheTTL)
	if err != nil {
		return Issued{}, err
	}

	return Issued{Session: session, Token: token, CacheToken: cacheToken}, nil
}

// Validate resolves a bearer token to its session, renewing it when the
// update-age window has passed. Renewal is a conditional update; on a
// lost race the winner's timestamps are re-read and returned.
func (s *SessionService) Validate(ctx context.Context, token string) (models.Session, models.User, error) {
	tokenHash := security.HashSessionToken(token)

	session, err := s.sessions.SessionByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Session{}, models.User{}, ErrNoSession
		}
		return models.Session{}, models.User{}, err
	}

	now := s.now()
	if !session.ExpiresAt.After(now) {
		if err := s.sessions.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			s.log.Warn().Err(err).Str("session_id", session.ID).Msg("delete expired session failed")
		}
		return models.Session{}, models.User{}, ErrSessionExpired
	}

	if now.Sub(session.LastRenewedAt) >= s.cfg.Auth.UpdateAge {
		renewed, err := s.sessions.RenewSession(ctx, session.ID, session.LastRenewedAt, now, now.Add(s.cfg.Auth.SessionLifetime))
		if err != nil {
			return models.Session{}, models.User{}, err
		}
		if renewed {
			session.LastRenewedAt = now
			session.ExpiresAt = now.Add(s.cfg.Auth.SessionLifetime)
		} else {
			session, err = s.sessions.SessionByTokenHash(ctx, tokenHash)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return models.Session{}, models.User{}, ErrNoSession
				}
				return models.Session{}, models.User{}, err
			}
		}
	}

	user, err := s.users.UserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Session{}, models.User{}, ErrNoSession
		}
		return models.Session{}, models.User{}, err
	}

	return session, user, nil
}

// ValidateCached authenticates from the signed cache token alone, with
// no store round-trip. Any failure — bad signature, expiry, denylisted
// session — is reported as ErrNoSession and the caller falls through to
// Validate.
func (s *SessionService) ValidateCached(ctx context.Context, cacheToken string) (*security.CacheClaims, error) {
	claims, err := security.ParseCacheToken(cacheToken, s.cfg.Auth.Secret)
	if err != nil {
		return nil, ErrNoSession
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.SessionID)
	if err != nil {
		// Fail closed on the fast path; the durable store decides.
		return nil, ErrNoSession
	}
	if revoked {
		return nil, ErrNoSession
	}

	return claims, nil
}

func (s *SessionService) IssueCacheToken(user models.User, sessionID string) (string, error) {
	return security.SignCacheToken(s.cfg.Auth.Secret, user.ID, sessionID, string(user.Role), s.cfg.Auth.CacheTTL)
}

// Revoke deletes the session and denylists its id for the cache TTL so
// an outstanding cache token dies with it instead of coasting to its
// own expiry.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	session, err := s.sessions.SessionByTokenHash(ctx, security.HashSessionToken(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNoSession
		}
		return err
	}

	if err := s.sessions.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	s.denylistSession(ctx, session.ID)
	return nil
}

// RevokeByID revokes one of the user's own sessions, e.g. from a
// session-management screen. Another user's session id is ErrNoSession.
func (s *SessionService) RevokeByID(ctx context.Context, userID string, sessionID string) error {
	sessions, err := s.sessions.SessionsByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, session := range sessions {
		if session.ID == sessionID {
			if err := s.sessions.DeleteSession(ctx, session.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			s.denylistSession(ctx, session.ID)
			return nil
		}
	}
	return ErrNoSession
}

// RevokeAll ends every session the user has, denylisting each id.
func (s *SessionService) RevokeAll(ctx context.Context, userID string) error {
	sessions, err := s.sessions.SessionsByUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.sessions.DeleteSessionsByUser(ctx, userID); err != nil {
		return err
	}
	for _, session := range sessions {
		s.denylistSession(ctx, session.ID)
	}
	return nil
}

func (s *SessionService) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	return s.sessions.SessionsByUser(ctx, userID)
}

func (s *SessionService) denylistSession(ctx context.Context, sessionID string) {
	if err := s.denylist.Revoke(ctx, sessionID, s.cfg.Auth.CacheTTL); err != nil {
		// The cookie is cleared and the row is gone; the denylist only
		// shortens the staleness window for copies of the cache token.
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("denylist revoke failed")
	}
}
