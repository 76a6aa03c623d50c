package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"optiplan/auth/internal/config"
	"optiplan/auth/internal/service"
)

// IdentityKey is where SessionAuth leaves the resolved identity.
const IdentityKey = "identity"

// Identity is the authenticated principal attached to the request.
type Identity struct {
	UserID    string
	Role      string
	SessionID string
	FromCache bool
}

// SessionAuth authenticates a request from its cookies. The signed
// cache token is tried first and skips the store entirely; on a miss
// the bearer token takes the full validate/renew path and a fresh
// cache token is staged for the response.
func SessionAuth(cfg *config.AppConfig, sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cacheToken, err := c.Cookie(cfg.CacheCookieName()); err == nil && cacheToken != "" {
			if claims, err := sessions.ValidateCached(c.Request.Context(), cacheToken); err == nil {
				c.Set(IdentityKey, Identity{
					UserID:    claims.UserID,
					Role:      claims.Role,
					SessionID: claims.SessionID,
					FromCache: true,
				})
				c.Next()
				return
			}
		}

		token, err := c.Cookie(cfg.SessionCookieName())
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no_session"})
			return
		}

		session, user, err := sessions.Validate(c.Request.Context(), token)
		if err != nil {
			code := "no_session"
			if errors.Is(err, service.ErrSessionExpired) {
				code = "session_expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": code})
			return
		}

		// Reissue the cache cookie so the next requests within the TTL
		// skip the store again.
		if fresh, err := sessions.IssueCacheToken(user, session.ID); err == nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cfg.CacheCookieName(), fresh,
				int(cfg.Auth.CacheTTL.Seconds()), "/", cfg.Auth.CookieDomain, cfg.IsProduction(), true)
		}

		c.Set(IdentityKey, Identity{
			UserID:    user.ID,
			Role:      string(user.Role),
			SessionID: session.ID,
		})
		c.Next()
	}
}

// CurrentIdentity reads the identity set by SessionAuth.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	val, exists := c.Get(IdentityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := val.(Identity)
	return identity, ok
}
