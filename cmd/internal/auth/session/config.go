package session

import (
	"fmt"
	"time"

	paseto "aidanwoods.dev/go-paseto"
	"github.com/caarlos0/env/v11"
)

// Config controls token lifetimes and the signing key.
type Config struct {
	// Issuer is the "iss" claim of access tokens.
	Issuer string `env:"TCN_AUTH_ISSUER" envDefault:"tcn-invite"`

	AccessTokenTTL time.Duration `env:"TCN_AUTH_ACCESS_TTL" envDefault:"30m"`

	// SessionTTL bounds how long a sign-in lasts before the member must sign in again.
	SessionTTL time.Duration `env:"TCN_AUTH_SESSION_TTL" envDefault:"720h"`

	ClockSkew time.Duration `env:"TCN_AUTH_CLOCK_SKEW" envDefault:"30s"`

	// PasetoV4SecretKeyHex is the hex Ed25519 secret key signing access tokens.
	PasetoV4SecretKeyHex string `env:"TCN_PASETO_V4_SECRET_KEY_HEX"`

	// EphemeralKey is set when no key was configured and one was generated.
	EphemeralKey bool `env:"-"`
}

// DefaultConfig returns the defaults without a signing key.
func DefaultConfig() Config {
	return Config{
		Issuer:         "tcn-invite",
		AccessTokenTTL: 30 * time.Minute,
		SessionTTL:     30 * 24 * time.Hour,
		ClockSkew:      30 * time.Second,
	}
}

// LoadConfig reads TCN_AUTH_* and TCN_PASETO_V4_SECRET_KEY_HEX.
//
// With requireKey false a missing key is replaced by a random one and
// EphemeralKey is set; tokens then stop verifying after a restart.
func LoadConfig(requireKey bool) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if cfg.PasetoV4SecretKeyHex == "" {
		if requireKey {
			return Config{}, fmt.Errorf("%w: TCN_PASETO_V4_SECRET_KEY_HEX is required", ErrConfig)
		}
		cfg.PasetoV4SecretKeyHex = paseto.NewV4AsymmetricSecretKey().ExportHex()
		cfg.EphemeralKey = true
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks durations and key shape.
func (c Config) Validate() error {
	switch {
	case c.Issuer == "":
		return fmt.Errorf("%w: empty issuer", ErrConfig)
	case c.AccessTokenTTL <= 0:
		return fmt.Errorf("%w: TCN_AUTH_ACCESS_TTL must be positive", ErrConfig)
	case c.SessionTTL < c.AccessTokenTTL:
		return fmt.Errorf("%w: TCN_AUTH_SESSION_TTL must be >= TCN_AUTH_ACCESS_TTL", ErrConfig)
	case c.ClockSkew < 0 || c.ClockSkew > 5*time.Minute:
		return fmt.Errorf("%w: TCN_AUTH_CLOCK_SKEW out of range [0..5m]", ErrConfig)
	}
	if _, err := paseto.NewV4AsymmetricSecretKeyFromHex(c.PasetoV4SecretKeyHex); err != nil {
		return fmt.Errorf("%w: TCN_PASETO_V4_SECRET_KEY_HEX: %v", ErrConfig, err)
	}
	return nil
}
