package authapi

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls auth API limits.
type Config struct {
	TrustProxy   bool  `env:"TCN_AUTH_TRUST_PROXY" envDefault:"false"`
	MaxBodyBytes int64 `env:"TCN_AUTH_MAX_BODY_BYTES" envDefault:"65536"`

	// ProfileTimeout bounds the per-request profile lookup that refreshes the role.
	ProfileTimeout time.Duration `env:"TCN_AUTH_PROFILE_TIMEOUT" envDefault:"5s"`

	LoginIPMax    int           `env:"TCN_AUTH_LOGIN_IP_MAX" envDefault:"20"`
	LoginIPWindow time.Duration `env:"TCN_AUTH_LOGIN_IP_WINDOW" envDefault:"5m"`

	LockoutShortThreshold  int           `env:"TCN_AUTH_LOGIN_LOCKOUT_SHORT_THRESHOLD" envDefault:"5"`
	LockoutShortDuration   time.Duration `env:"TCN_AUTH_LOGIN_LOCKOUT_SHORT_DURATION" envDefault:"5m"`
	LockoutLongThreshold   int           `env:"TCN_AUTH_LOGIN_LOCKOUT_LONG_THRESHOLD" envDefault:"10"`
	LockoutLongDuration    time.Duration `env:"TCN_AUTH_LOGIN_LOCKOUT_LONG_DURATION" envDefault:"30m"`
	LockoutSevereThreshold int           `env:"TCN_AUTH_LOGIN_LOCKOUT_SEVERE_THRESHOLD" envDefault:"20"`
	LockoutSevereDuration  time.Duration `env:"TCN_AUTH_LOGIN_LOCKOUT_SEVERE_DURATION" envDefault:"2h"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:           64 << 10,
		ProfileTimeout:         5 * time.Second,
		LoginIPMax:             20,
		LoginIPWindow:          5 * time.Minute,
		LockoutShortThreshold:  5,
		LockoutShortDuration:   5 * time.Minute,
		LockoutLongThreshold:   10,
		LockoutLongDuration:    30 * time.Minute,
		LockoutSevereThreshold: 20,
		LockoutSevereDuration:  2 * time.Hour,
	}
}

// LoadConfig parses TCN_AUTH_* variables and clamps nonsensical values to defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("authapi: config: %w", err)
	}
	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.ProfileTimeout <= 0 {
		c.ProfileTimeout = d.ProfileTimeout
	}
	if c.LoginIPMax <= 0 {
		c.LoginIPMax = d.LoginIPMax
	}
	if c.LoginIPWindow <= 0 {
		c.LoginIPWindow = d.LoginIPWindow
	}
	return c
}

func (c Config) lockoutTiers() []lockoutTier {
	return []lockoutTier{
		{Threshold: c.LockoutSevereThreshold, Duration: c.LockoutSevereDuration},
		{Threshold: c.LockoutLongThreshold, Duration: c.LockoutLongDuration},
		{Threshold: c.LockoutShortThreshold, Duration: c.LockoutShortDuration},
	}
}
