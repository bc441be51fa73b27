package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuntimeBaseURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "explicit localhost", in: "127.0.0.1:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v4", in: "0.0.0.0:8080", want: "http://127.0.0.1:8080"},
		{name: "bind all v6", in: "[::]:9090", want: "http://127.0.0.1:9090"},
		{name: "port only", in: ":8080", want: "http://127.0.0.1:8080"},
		{name: "ipv6 host", in: "[2001:db8::1]:9090", want: "http://[2001:db8::1]:9090"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, runtimeBaseURL(tc.in))
		})
	}
}

func TestWSBaseURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "http://127.0.0.1:8080", want: "ws://127.0.0.1:8080"},
		{in: "https://invite.example.com", want: "wss://invite.example.com"},
		{in: "127.0.0.1:8080", want: "ws://127.0.0.1:8080"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, wsBaseURL(tc.in), tc.in)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("TCN_DATABASE_URL", "")
	t.Setenv("TCN_PUBLIC_BASE_URL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr)
	assert.Equal(t, "tcn", cfg.DBSchema)
	assert.Equal(t, 2, cfg.FlyerScale)
	assert.Equal(t, "https://wa.me/", cfg.ShareBaseURL)
	assert.False(t, cfg.DBEnabled())
	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("TCN_PUBLIC_BASE_URL", "https://invite.example.com/")
	t.Setenv("TCN_CORS_ALLOWED_ORIGINS", "https://app.example.com,http://127.0.0.1:*")
	t.Setenv("TCN_VERIFY_TIMEOUT", "2s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://invite.example.com", cfg.BaseURL())
	assert.Equal(t, []string{"https://app.example.com", "http://127.0.0.1:*"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "2s", cfg.VerifyTimeout.String())
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("TCN_DATABASE_URL", "")

	base, err := LoadConfig()
	require.NoError(t, err)

	cases := map[string]func(c *Config){
		"schema injection":     func(c *Config) { c.DBSchema = `tcn"; drop` },
		"min above max":        func(c *Config) { c.DBMinConns, c.DBMaxConns = 5, 2 },
		"scale":                func(c *Config) { c.FlyerScale = 9 },
		"verify timeout":       func(c *Config) { c.VerifyTimeout = 0 },
		"admin without secret": func(c *Config) { c.BootstrapAdminEmail = "a@example.com" },
	}
	for name, mutate := range cases {
		c := base
		mutate(&c)
		assert.ErrorIs(t, c.Validate(), ErrConfig, name)
	}
}
