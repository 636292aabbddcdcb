package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const prodSecret = "a-very-long-production-secret-value-1234"

// isolate runs Load from an empty directory with every STOREFRONT_ variable
// the tests touch cleared; viper treats empty variables as unset.
func isolate(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	for _, k := range []string{
		"STOREFRONT_APP_NAME", "STOREFRONT_APP_ENV", "STOREFRONT_APP_PORT",
		"STOREFRONT_BACKEND_BASE_URL", "STOREFRONT_BACKEND_TIMEOUT",
		"STOREFRONT_SESSION_STORE", "STOREFRONT_SESSION_SECRET", "STOREFRONT_SESSION_TTL",
		"STOREFRONT_COOKIE_SECURE", "STOREFRONT_COOKIE_SAME_SITE",
		"STOREFRONT_CACHE_TTL", "STOREFRONT_HTTP_TRUSTED_PROXIES",
		"STOREFRONT_TELEMETRY_SAMPLING_RATIO",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "retail-storefront", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "storefront_session", cfg.Session.CookieName)
	assert.Equal(t, devSessionSecret, cfg.Session.Secret)
	assert.Equal(t, "lax", cfg.Cookie.SameSite)
	assert.Equal(t, "/", cfg.Cookie.Path)
	assert.Equal(t, int64(1<<20), cfg.HTTP.MaxBodySize)
	assert.Equal(t, 5, cfg.HTTP.AuthRateLimitRequests)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "retail@upi", cfg.Payment.UPIPayee)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("STOREFRONT_APP_NAME", "shop")
	t.Setenv("STOREFRONT_APP_PORT", "9000")
	t.Setenv("STOREFRONT_BACKEND_BASE_URL", "http://api.internal:8081")
	t.Setenv("STOREFRONT_BACKEND_TIMEOUT", "3s")
	t.Setenv("STOREFRONT_SESSION_TTL", "2h")
	t.Setenv("STOREFRONT_CACHE_TTL", "30s")
	t.Setenv("STOREFRONT_HTTP_TRUSTED_PROXIES", "10.0.0.1,10.0.0.2")
	t.Setenv("STOREFRONT_TELEMETRY_SAMPLING_RATIO", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "shop", cfg.App.Name)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "http://api.internal:8081", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.HTTP.TrustedProxies)
	assert.Equal(t, 0.25, cfg.Telemetry.SamplingRatio)
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)
	toml := `
[backend]
base_url = "http://catalog:9090"
timeout = "4s"

[payment]
upi_payee = "shop@okbank"

[telemetry]
sampling_ratio = 0.0
`
	require.NoError(t, os.WriteFile(filepath.Join(".", "config.toml"), []byte(toml), 0o600))
	t.Setenv("STOREFRONT_BACKEND_TIMEOUT", "7s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://catalog:9090", cfg.Backend.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Backend.Timeout, "environment beats the file")
	assert.Equal(t, "shop@okbank", cfg.Payment.UPIPayee)
	assert.Equal(t, "RetailShop", cfg.Payment.UPIPayeeName)
	assert.Zero(t, cfg.Telemetry.SamplingRatio, "an explicit zero ratio is kept")
}

func TestLoad_MalformedConfigFile(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile("config.toml", []byte("[backend\nbase_url ="), 0o600))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "relative backend URL",
			env:     map[string]string{"STOREFRONT_BACKEND_BASE_URL": "/api"},
			wantErr: "backend.base_url",
		},
		{
			name:    "unknown session store",
			env:     map[string]string{"STOREFRONT_SESSION_STORE": "memcached"},
			wantErr: "session.store",
		},
		{
			name:    "same_site none without secure",
			env:     map[string]string{"STOREFRONT_COOKIE_SAME_SITE": "none"},
			wantErr: "cookie.secure",
		},
		{
			name: "production with short secret",
			env: map[string]string{
				"STOREFRONT_APP_ENV":        "production",
				"STOREFRONT_SESSION_SECRET": "short",
				"STOREFRONT_COOKIE_SECURE":  "true",
				"STOREFRONT_SESSION_STORE":  "redis",
			},
			wantErr: "32 characters",
		},
		{
			name: "production without secret",
			env: map[string]string{
				"STOREFRONT_APP_ENV":       "production",
				"STOREFRONT_COOKIE_SECURE": "true",
				"STOREFRONT_SESSION_STORE": "redis",
			},
			wantErr: "session.secret is required",
		},
		{
			name: "production without secure cookies",
			env: map[string]string{
				"STOREFRONT_APP_ENV":        "production",
				"STOREFRONT_SESSION_SECRET": prodSecret,
				"STOREFRONT_SESSION_STORE":  "redis",
			},
			wantErr: "cookie.secure",
		},
		{
			name: "production with memory sessions",
			env: map[string]string{
				"STOREFRONT_APP_ENV":        "production",
				"STOREFRONT_SESSION_SECRET": prodSecret,
				"STOREFRONT_COOKIE_SECURE":  "true",
			},
			wantErr: "must be 'redis' in production",
		},
		{
			name:    "sampling ratio out of range",
			env:     map[string]string{"STOREFRONT_TELEMETRY_SAMPLING_RATIO": "1.5"},
			wantErr: "sampling_ratio",
		},
		{
			name: "valid production",
			env: map[string]string{
				"STOREFRONT_APP_ENV":        "production",
				"STOREFRONT_SESSION_SECRET": prodSecret,
				"STOREFRONT_SESSION_STORE":  "redis",
				"STOREFRONT_COOKIE_SECURE":  "true",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "production", cfg.App.Env)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache", Port: 6380}
	assert.Equal(t, "cache:6380", r.Addr())
}
