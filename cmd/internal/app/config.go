package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/Mykel-Eze/tcn-invite/cmd/internal/dbschema"
)

// Config contains the runtime configuration read from TCN_* variables.
type Config struct {
	HTTPAddr string `env:"TCN_HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	// PublicBaseURL prefixes verification URLs printed in QR codes. Empty
	// derives one from HTTPAddr, which is only useful locally.
	PublicBaseURL string `env:"TCN_PUBLIC_BASE_URL"`

	LogLevel  string `env:"TCN_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"TCN_LOG_FORMAT" envDefault:"json"`

	ReadHeaderTimeout time.Duration `env:"TCN_HTTP_READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"TCN_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout      time.Duration `env:"TCN_HTTP_WRITE_TIMEOUT" envDefault:"15s"`
	IdleTimeout       time.Duration `env:"TCN_HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	MaxHeaderBytes    int           `env:"TCN_HTTP_MAX_HEADER_BYTES" envDefault:"1048576"`

	DatabaseURL string `env:"TCN_DATABASE_URL"`
	DBMaxConns  int32  `env:"TCN_DB_MAX_CONNS" envDefault:"10"`
	DBMinConns  int32  `env:"TCN_DB_MIN_CONNS" envDefault:"0"`
	DBSchema    string `env:"TCN_DB_SCHEMA" envDefault:"tcn"`

	// ReadinessRequireDB makes /readyz fail unless Postgres is configured and reachable.
	ReadinessRequireDB bool `env:"TCN_READINESS_REQUIRE_DB" envDefault:"false"`

	VerifyTimeout time.Duration `env:"TCN_VERIFY_TIMEOUT" envDefault:"5s"`
	WizardIdleTTL time.Duration `env:"TCN_WIZARD_IDLE_TTL" envDefault:"30m"`
	FlyerScale    int           `env:"TCN_FLYER_SCALE" envDefault:"2"`
	ShareBaseURL  string        `env:"TCN_SHARE_BASE_URL" envDefault:"https://wa.me/"`

	CORSAllowedOrigins   []string `env:"TCN_CORS_ALLOWED_ORIGINS" envSeparator:","`
	CORSAllowCredentials bool     `env:"TCN_CORS_ALLOW_CREDENTIALS" envDefault:"false"`
	CORSMaxAgeSeconds    int      `env:"TCN_CORS_MAX_AGE_SECONDS" envDefault:"600"`

	MetricsEnabled bool `env:"TCN_METRICS_ENABLED" envDefault:"true"`

	// Bootstrap admin, created at startup when the email is not yet registered.
	BootstrapAdminEmail    string `env:"TCN_BOOTSTRAP_ADMIN_EMAIL"`
	BootstrapAdminName     string `env:"TCN_BOOTSTRAP_ADMIN_NAME" envDefault:"TCN Admin"`
	BootstrapAdminPassword string `env:"TCN_BOOTSTRAP_ADMIN_PASSWORD"`
}

// ErrConfig wraps every configuration failure.
var ErrConfig = errors.New("invalid configuration")

// LoadConfig reads an optional .env file and then the environment.
// Variables already set in the environment win over the file.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("%w: .env: %v", ErrConfig, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c Config) Validate() error {
	switch {
	case !dbschema.ValidIdent(c.DBSchema):
		return fmt.Errorf("%w: TCN_DB_SCHEMA %q is not a plain identifier", ErrConfig, c.DBSchema)
	case c.DBMinConns < 0 || (c.DBMaxConns > 0 && c.DBMinConns > c.DBMaxConns):
		return fmt.Errorf("%w: TCN_DB_MIN_CONNS must be within [0..TCN_DB_MAX_CONNS]", ErrConfig)
	case c.FlyerScale < 1 || c.FlyerScale > 4:
		return fmt.Errorf("%w: TCN_FLYER_SCALE must be within [1..4]", ErrConfig)
	case c.VerifyTimeout <= 0:
		return fmt.Errorf("%w: TCN_VERIFY_TIMEOUT must be positive", ErrConfig)
	case (c.BootstrapAdminEmail == "") != (c.BootstrapAdminPassword == ""):
		return fmt.Errorf("%w: TCN_BOOTSTRAP_ADMIN_EMAIL and TCN_BOOTSTRAP_ADMIN_PASSWORD go together", ErrConfig)
	}
	return nil
}

// DBEnabled reports whether a Postgres URL is configured.
func (c Config) DBEnabled() bool { return strings.TrimSpace(c.DatabaseURL) != "" }

// BaseURL is the public origin used in verification links.
func (c Config) BaseURL() string {
	if u := strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/"); u != "" {
		return u
	}
	return runtimeBaseURL(c.HTTPAddr)
}
