package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"optiplan/auth/internal/cache"
	"optiplan/auth/internal/config"
	"optiplan/auth/internal/middleware"
	"optiplan/auth/internal/repository"
	"optiplan/auth/internal/service"
)

type HandlerSet struct {
	log            zerolog.Logger
	cfg            *config.AppConfig
	authService    *service.AuthService
	sessionService *service.SessionService
	cookies        *CookieHelper
	users          repository.UserStore
	db             *pgxpool.Pool
	redis          *redis.Client
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, redisClient *redis.Client, mailer service.Mailer, cfg *config.AppConfig) (HandlerSet, error) {
	store := repository.NewPostgres(db)
	denylist := cache.NewRedisDenylist(redisClient)

	sessions := service.NewSessionService(store, store, denylist, cfg, log)
	auth, err := service.NewAuthService(store, store, store, sessions, mailer, cfg, log)
	if err != nil {
		return HandlerSet{}, err
	}

	return HandlerSet{
		log:            log,
		cfg:            cfg,
		authService:    auth,
		sessionService: sessions,
		cookies:        NewCookieHelper(cfg),
		users:          store,
		db:             db,
		redis:          redisClient,
	}, nil
}

// Mount attaches all routes under the given group.
func (h HandlerSet) Mount(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/password/forgot", h.ForgotPassword)
		auth.POST("/password/reset", h.ResetPassword)

		protected := v1.Group("/auth")
		protected.Use(middleware.SessionAuth(h.cfg, h.sessionService))
		protected.GET("/session", h.Session)
		protected.GET("/sessions", h.ListSessions)
		protected.DELETE("/sessions/:id", h.RevokeSession)
	}
}
