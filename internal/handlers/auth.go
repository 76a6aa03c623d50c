package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"optiplan/auth/internal/middleware"
	"optiplan/auth/internal/models"
	"optiplan/auth/internal/repository"
	"optiplan/auth/internal/service"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(user models.User) userResponse {
	return userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		CreatedAt:   user.CreatedAt,
	}
}

func (h HandlerSet) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), service.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.Name,
	})
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	issued, err := h.sessionService.Issue(c.Request.Context(), user)
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	h.cookies.SetSessionCookies(c, issued.Token, issued.CacheToken)
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	user, err := h.authService.Verify(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	issued, err := h.sessionService.Issue(c.Request.Context(), user)
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	h.cookies.SetSessionCookies(c, issued.Token, issued.CacheToken)
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func (h HandlerSet) Logout(c *gin.Context) {
	token := h.cookies.SessionToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no_session"})
		return
	}

	err := h.sessionService.Revoke(c.Request.Context(), token)
	h.cookies.ClearSessionCookies(c)
	if err != nil && !errors.Is(err, service.ErrNoSession) {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	c.Status(http.StatusNoContent)
}

// Session is getCurrentSession: the identity comes from the auth
// middleware (cache token or full validation), the profile fields from
// the user record.
func (h HandlerSet) Session(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no_session"})
		return
	}

	user, err := h.users.UserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": toUserResponse(user),
		"session": gin.H{
			"id": identity.SessionID,
		},
	})
}

type sessionResponse struct {
	ID            string    `json:"id"`
	ExpiresAt     time.Time `json:"expiresAt"`
	LastRenewedAt time.Time `json:"lastRenewedAt"`
	Current       bool      `json:"current"`
}

func (h HandlerSet) ListSessions(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no_session"})
		return
	}

	sessions, err := h.sessionService.ListByUser(c.Request.Context(), identity.UserID)
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	resp := make([]sessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, sessionResponse{
			ID:            session.ID,
			ExpiresAt:     session.ExpiresAt,
			LastRenewedAt: session.LastRenewedAt,
			Current:       session.ID == identity.SessionID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"sessions": resp})
}

func (h HandlerSet) RevokeSession(c *gin.Context) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no_session"})
		return
	}

	sessionID := c.Param("id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.sessionService.RevokeByID(c.Request.Context(), identity.UserID, sessionID); err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	if sessionID == identity.SessionID {
		h.cookies.ClearSessionCookies(c)
	}
	c.Status(http.StatusNoContent)
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword always answers 202: whether the email exists is not
// observable from this endpoint.
func (h HandlerSet) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.authService.CreatePasswordReset(c.Request.Context(), req.Email); err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	c.Status(http.StatusAccepted)
}

type resetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		status, code := errorStatus(err)
		c.JSON(status, gin.H{"error": code})
		return
	}

	c.Status(http.StatusNoContent)
}

// errorStatus maps the service/repository taxonomy onto status codes
// and stable machine-readable error codes. The core never writes prose.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict, "email_in_use"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, service.ErrNoSession):
		return http.StatusUnauthorized, "no_session"
	case errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized, "session_expired"
	case errors.Is(err, service.ErrInvalidResetToken):
		return http.StatusBadRequest, "invalid_reset_token"
	case errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable, "storage_unavailable"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
