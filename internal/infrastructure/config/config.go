package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Session   SessionConfig   `mapstructure:"session"`
	Cookie    CookieConfig    `mapstructure:"cookie"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// BackendConfig holds settings for the retail backend API
type BackendConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SessionConfig holds session storage and signing settings
type SessionConfig struct {
	Store      string        `mapstructure:"store"`  // memory or redis
	Secret     string        `mapstructure:"secret"` // HMAC key for the session cookie token
	TTL        time.Duration `mapstructure:"ttl"`
	CookieName string        `mapstructure:"cookie_name"`
	Issuer     string        `mapstructure:"issuer"`
}

// CookieConfig holds attributes of the session cookie
type CookieConfig struct {
	Domain   string `mapstructure:"domain"` // empty means the request host
	Path     string `mapstructure:"path"`
	Secure   bool   `mapstructure:"secure"`
	SameSite string `mapstructure:"same_site"` // strict, lax or none
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	WriteTimeout          time.Duration `mapstructure:"write_timeout"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes        int           `mapstructure:"max_header_bytes"`
	MaxBodySize           int64         `mapstructure:"max_body_size"`
	AuthRateLimitEnabled  bool          `mapstructure:"auth_rate_limit_enabled"`
	AuthRateLimitRequests int           `mapstructure:"auth_rate_limit_requests"` // per window per client IP
	AuthRateLimitWindow   time.Duration `mapstructure:"auth_rate_limit_window"`
	TrustedProxies        []string      `mapstructure:"trusted_proxies"`
}

// CacheConfig holds collection cache settings
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"` // lifetime of a cached collection absent any invalidation
}

// PaymentConfig holds the UPI details shown on the cart's payment QR
type PaymentConfig struct {
	UPIPayee     string `mapstructure:"upi_payee"`
	UPIPayeeName string `mapstructure:"upi_payee_name"`
}

// TelemetryConfig holds OpenTelemetry and Prometheus configuration
type TelemetryConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	CollectorEndpoint string  `mapstructure:"collector_endpoint"` // OTLP gRPC, e.g. localhost:4317
	SamplingRatio     float64 `mapstructure:"sampling_ratio"`     // 0.0-1.0
	ServiceName       string  `mapstructure:"service_name"`
	Insecure          bool    `mapstructure:"insecure"` // plaintext OTLP, development only
	MetricsEnabled    bool    `mapstructure:"metrics_enabled"`
}

const devSessionSecret = "development-session-secret-change-me"

// Load reads configuration. Sources, highest priority first:
// STOREFRONT_* environment variables (STOREFRONT_BACKEND_BASE_URL for
// backend.base_url), config.toml, then the defaults below.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Session.Secret == "" && cfg.App.Env != "production" {
		cfg.Session.Secret = devSessionSecret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setDefaults registers every key, so that Unmarshal sees environment
// overrides even for keys absent from config.toml
func setDefaults(v *viper.Viper) {
	defaults := map[string]any{
		"app.name": "retail-storefront",
		"app.env":  "development",
		"app.port": "3000",

		"backend.base_url":   "http://localhost:8080",
		"backend.timeout":    10 * time.Second,
		"backend.user_agent": "retail-storefront/1.0",

		"redis.host":     "localhost",
		"redis.port":     6379,
		"redis.password": "",
		"redis.db":       0,

		"session.store":       "memory",
		"session.secret":      "",
		"session.ttl":         24 * time.Hour,
		"session.cookie_name": "storefront_session",
		"session.issuer":      "retail-storefront",

		"cookie.domain":    "",
		"cookie.path":      "/",
		"cookie.secure":    false,
		"cookie.same_site": "lax",

		"log.level":  "info",
		"log.format": "console",
		"log.output": "stdout",

		"http.read_timeout":             15 * time.Second,
		"http.write_timeout":            30 * time.Second,
		"http.idle_timeout":             60 * time.Second,
		"http.max_header_bytes":         1 << 20,
		"http.max_body_size":            1 << 20, // forms only
		"http.auth_rate_limit_enabled":  false,
		"http.auth_rate_limit_requests": 5,
		"http.auth_rate_limit_window":   time.Minute,
		"http.trusted_proxies":          []string{},

		"cache.ttl": 5 * time.Minute,

		"payment.upi_payee":      "retail@upi",
		"payment.upi_payee_name": "RetailShop",

		"telemetry.enabled":            false,
		"telemetry.collector_endpoint": "localhost:4317",
		"telemetry.sampling_ratio":     1.0,
		"telemetry.service_name":       "retail-storefront",
		"telemetry.insecure":           false,
		"telemetry.metrics_enabled":    false,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("backend.timeout cannot be negative")
	}

	switch c.Session.Store {
	case "memory", "redis":
	default:
		return fmt.Errorf("session.store must be 'memory' or 'redis', got %q", c.Session.Store)
	}

	switch c.Cookie.SameSite {
	case "strict", "lax", "none":
	default:
		return fmt.Errorf("cookie.same_site must be 'strict', 'lax' or 'none', got %q", c.Cookie.SameSite)
	}
	if c.Cookie.SameSite == "none" && !c.Cookie.Secure {
		return fmt.Errorf("cookie.same_site=none requires cookie.secure=true")
	}

	if c.App.Env == "production" {
		if c.Session.Secret == "" {
			return fmt.Errorf("session.secret is required in production")
		}
		if len(c.Session.Secret) < 32 {
			return fmt.Errorf("session.secret must be at least 32 characters in production")
		}
		if !c.Cookie.Secure {
			return fmt.Errorf("cookie.secure must be true in production (HTTPS required for secure cookies)")
		}
		if c.Session.Store != "redis" {
			return fmt.Errorf("session.store must be 'redis' in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
