package realtime

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	maxFrameBytes = 4 << 10

	defaultRateEvents = 30
	defaultRateWindow = 10 * time.Second

	minSendQueue    = 16
	maxPingFailures = 3
	closeGrace      = time.Second
)

// Config tunes the check-in feed gateway.
type Config struct {
	// DevInsecure skips websocket.Accept's origin verification entirely.
	DevInsecure bool `env:"TCN_WS_DEV_INSECURE" envDefault:"false"`

	OriginRequired bool     `env:"TCN_WS_ORIGIN_REQUIRED" envDefault:"true"`
	AllowedOrigins []string `env:"TCN_WS_ALLOWED_ORIGINS" envDefault:"http://localhost,http://127.0.0.1" envSeparator:","`

	WriteTimeout      time.Duration `env:"TCN_WS_WRITE_TIMEOUT" envDefault:"5s"`
	ReadIdleTimeout   time.Duration `env:"TCN_WS_READ_IDLE_TIMEOUT" envDefault:"2m"`
	HeartbeatInterval time.Duration `env:"TCN_WS_HEARTBEAT_INTERVAL" envDefault:"25s"`
	HeartbeatTimeout  time.Duration `env:"TCN_WS_HEARTBEAT_TIMEOUT" envDefault:"5s"`
	SendQueue         int           `env:"TCN_WS_SEND_QUEUE" envDefault:"64"`

	RateEvents int           `env:"TCN_WS_RATE_EVENTS" envDefault:"30"`
	RateWindow time.Duration `env:"TCN_WS_RATE_WINDOW" envDefault:"10s"`

	// AuthTimeout bounds the token and profile lookup during the handshake.
	AuthTimeout time.Duration `env:"TCN_WS_AUTH_TIMEOUT" envDefault:"5s"`
}

// DefaultConfig mirrors the envDefault tags.
func DefaultConfig() Config {
	return Config{
		OriginRequired:    true,
		AllowedOrigins:    []string{"http://localhost", "http://127.0.0.1"},
		WriteTimeout:      5 * time.Second,
		ReadIdleTimeout:   2 * time.Minute,
		HeartbeatInterval: 25 * time.Second,
		HeartbeatTimeout:  5 * time.Second,
		SendQueue:         64,
		RateEvents:        defaultRateEvents,
		RateWindow:        defaultRateWindow,
		AuthTimeout:       5 * time.Second,
	}
}

// LoadConfig parses TCN_WS_* variables.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("realtime: config: %w", err)
	}
	return cfg.normalized(), nil
}

func (c Config) normalized() Config {
	d := DefaultConfig()
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ReadIdleTimeout <= 0 {
		c.ReadIdleTimeout = d.ReadIdleTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.HeartbeatTimeout <= 0 {
		c.HeartbeatTimeout = d.HeartbeatTimeout
	}
	if c.SendQueue < minSendQueue {
		c.SendQueue = minSendQueue
	}
	if c.AuthTimeout <= 0 {
		c.AuthTimeout = d.AuthTimeout
	}
	return c
}
