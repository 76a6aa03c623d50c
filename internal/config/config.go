package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig is the policy surface consumed by the session and
// credential services. Read-only after startup.
type AuthConfig struct {
	Secret          string
	BaseURL         string
	SessionLifetime time.Duration
	UpdateAge       time.Duration
	CacheTTL        time.Duration
	CookiePrefix    string
	CookieDomain    string
	VerificationTTL time.Duration
}

// OAuthConfig holds federated-provider credentials. Optional; no flow
// is wired unless both values are present.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
}

// EmailConfig points at the outbound mail collaborator. Optional; the
// service falls back to a no-op mailer when unset.
type EmailConfig struct {
	APIKey string
	From   string
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Auth             AuthConfig
	OAuth            OAuthConfig
	Email            EmailConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("OPTIPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces the startup contract: a weak secret or malformed
// base URL is fatal before the first request, never during one.
func (c *AppConfig) Validate() error {
	switch c.Environment {
	case "development", "test", "production":
	default:
		return fmt.Errorf("environment must be development, test or production, got %q", c.Environment)
	}

	if len(c.Auth.Secret) < 32 {
		return fmt.Errorf("auth.secret must be at least 32 bytes")
	}

	parsed, err := url.Parse(c.Auth.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("auth.baseurl must be an absolute URL, got %q", c.Auth.BaseURL)
	}

	if c.Auth.CacheTTL >= c.Auth.SessionLifetime {
		return fmt.Errorf("auth.cachettl must be shorter than auth.sessionlifetime")
	}
	if c.Auth.UpdateAge <= 0 || c.Auth.SessionLifetime <= 0 {
		return fmt.Errorf("auth.updateage and auth.sessionlifetime must be positive")
	}

	return nil
}

// IsProduction drives cookie security attributes.
func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}

// SessionCookieName is the long-lived opaque bearer token cookie.
func (c *AppConfig) SessionCookieName() string {
	return c.Auth.CookiePrefix + ".session_token"
}

// CacheCookieName is the short-lived signed cache token cookie.
func (c *AppConfig) CacheCookieName() string {
	return c.Auth.CookiePrefix + ".session_data"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	// Registered empty so env-only values bind during Unmarshal.
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("redis.password", "")

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.baseurl", "")
	v.SetDefault("auth.cookiedomain", "")
	v.SetDefault("auth.sessionlifetime", "168h") // 7 days
	v.SetDefault("auth.updateage", "24h")
	v.SetDefault("auth.cachettl", "5m")
	v.SetDefault("auth.cookieprefix", "optiplan")
	v.SetDefault("auth.verificationttl", "1h")
}
