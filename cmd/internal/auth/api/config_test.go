package authapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ClampsAndParses(t *testing.T) {
	t.Setenv("TCN_AUTH_MAX_BODY_BYTES", "-1")
	t.Setenv("TCN_AUTH_PROFILE_TIMEOUT", "2s")
	t.Setenv("TCN_AUTH_TRUST_PROXY", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(64<<10), cfg.MaxBodyBytes)
	assert.Equal(t, 2*time.Second, cfg.ProfileTimeout)
	assert.True(t, cfg.TrustProxy)
}

func TestLoadConfig_RejectsGarbage(t *testing.T) {
	t.Setenv("TCN_AUTH_LOGIN_IP_WINDOW", "often")
	_, err := LoadConfig()
	assert.Error(t, err)
}
