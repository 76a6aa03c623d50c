package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"optiplan/auth/internal/config"
)

// CookieHelper writes the two auth cookies: the long-lived opaque
// bearer token and the short-lived signed cache token. Both are
// HttpOnly and SameSite=Lax; Secure is added in production.
type CookieHelper struct {
	cfg *config.AppConfig
}

func NewCookieHelper(cfg *config.AppConfig) *CookieHelper {
	return &CookieHelper{cfg: cfg}
}

func (h *CookieHelper) SetSessionCookies(c *gin.Context, token string, cacheToken string) {
	h.set(c, h.cfg.SessionCookieName(), token, int(h.cfg.Auth.SessionLifetime.Seconds()))
	h.set(c, h.cfg.CacheCookieName(), cacheToken, int(h.cfg.Auth.CacheTTL.Seconds()))
}

func (h *CookieHelper) ClearSessionCookies(c *gin.Context) {
	h.set(c, h.cfg.SessionCookieName(), "", -1)
	h.set(c, h.cfg.CacheCookieName(), "", -1)
}

func (h *CookieHelper) SessionToken(c *gin.Context) string {
	token, err := c.Cookie(h.cfg.SessionCookieName())
	if err != nil {
		return ""
	}
	return token
}

func (h *CookieHelper) set(c *gin.Context, name string, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		name,
		value,
		maxAge,
		"/",
		h.cfg.Auth.CookieDomain,
		h.cfg.IsProduction(),
		true, // httpOnly, always
	)
}
