package config

import (
	"fmt"
	"log"
	"net"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "KEEBSHOP"

type Config struct {
	Host          string `envconfig:"HOST" default:"127.0.0.1"` // the operator session is shared by every client
	Port          string `envconfig:"PORT" default:"8080"`
	APIBaseURL    string `envconfig:"API_BASE_URL" default:"http://localhost:8081/api"`
	DBDSN         string `envconfig:"DB_DSN" default:"keebshop.db"` // sqlite file in project root
	LogFile       string `envconfig:"LOG_FILE"`                     // empty logs to stdout only
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	SessionSecret string `envconfig:"SESSION_SECRET"`
	PageSize      int    `envconfig:"PAGE_SIZE" default:"12"`
	MaxImageMB    int    `envconfig:"MAX_IMAGE_MB" default:"10"`
	CookieSecure  bool   `envconfig:"COOKIE_SECURE" default:"false"`
}

// Load reads KEEBSHOP_* variables. Callers load .env files beforehand.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 12
	}
	if cfg.MaxImageMB <= 0 {
		cfg.MaxImageMB = 10
	}
	log.Printf("[config] HOST=%s PORT=%s API_BASE_URL=%s DB_DSN=%s LOG_FILE=%s LOG_LEVEL=%s SESSION_SECRET set=%t",
		cfg.Host, cfg.Port, cfg.APIBaseURL, cfg.DBDSN, cfg.LogFile, cfg.LogLevel, cfg.SessionSecret != "")
	return cfg, nil
}

// MaxImageBytes is the upload ceiling for product images.
func (c Config) MaxImageBytes() int64 {
	return int64(c.MaxImageMB) << 20
}

// Addr is the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
