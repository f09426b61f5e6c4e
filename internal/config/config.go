package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config carries every tunable of the server process.
type Config struct {
	// Addr is the listen address for the websocket and REST surfaces.
	Addr string
	// TokenSecret signs identity tokens. The default is only suitable
	// for local development.
	TokenSecret string
	// TokenIssuer is stamped into and required from every token.
	TokenIssuer string
	// TokenTTL bounds how long an issued identity stays valid.
	TokenTTL time.Duration
	// CardsPath optionally points at a JSON card catalog. Empty selects
	// the built-in set.
	CardsPath string
	// IdleTimeout is the room age beyond which the reaper deletes it.
	IdleTimeout time.Duration
	// ReapInterval is the period of the reaper sweep.
	ReapInterval time.Duration
	// GracePeriod is how long a disconnected player may reconnect
	// before their playing match forfeits.
	GracePeriod time.Duration
	// MaxPayload caps a single inbound websocket message in bytes.
	MaxPayload int64
}

type fileConfig struct {
	Addr                string `json:"addr"`
	TokenSecret         string `json:"token_secret"`
	TokenIssuer         string `json:"token_issuer"`
	TokenTTLHours       int    `json:"token_ttl_hours"`
	CardsPath           string `json:"cards_path"`
	IdleTimeoutMinutes  int    `json:"idle_timeout_minutes"`
	ReapIntervalMinutes int    `json:"reap_interval_minutes"`
	GracePeriodSeconds  int    `json:"grace_period_seconds"`
	MaxPayloadBytes     int64  `json:"max_payload_bytes"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Addr:         ":8080",
		TokenSecret:  "dev-secret",
		TokenIssuer:  "triad",
		TokenTTL:     24 * time.Hour,
		IdleTimeout:  30 * time.Minute,
		ReapInterval: 5 * time.Minute,
		GracePeriod:  60 * time.Second,
		MaxPayload:   1 << 20,
	}
}

// Load builds the configuration: defaults, then the optional JSON file,
// then TRIAD_* environment overrides. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		var fc fileConfig
		if err := json.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		applyFile(&cfg, fc)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, fc fileConfig) {
	if fc.Addr != "" {
		cfg.Addr = fc.Addr
	}
	if fc.TokenSecret != "" {
		cfg.TokenSecret = fc.TokenSecret
	}
	if fc.TokenIssuer != "" {
		cfg.TokenIssuer = fc.TokenIssuer
	}
	if fc.TokenTTLHours > 0 {
		cfg.TokenTTL = time.Duration(fc.TokenTTLHours) * time.Hour
	}
	if fc.CardsPath != "" {
		cfg.CardsPath = fc.CardsPath
	}
	if fc.IdleTimeoutMinutes > 0 {
		cfg.IdleTimeout = time.Duration(fc.IdleTimeoutMinutes) * time.Minute
	}
	if fc.ReapIntervalMinutes > 0 {
		cfg.ReapInterval = time.Duration(fc.ReapIntervalMinutes) * time.Minute
	}
	if fc.GracePeriodSeconds > 0 {
		cfg.GracePeriod = time.Duration(fc.GracePeriodSeconds) * time.Second
	}
	if fc.MaxPayloadBytes > 0 {
		cfg.MaxPayload = fc.MaxPayloadBytes
	}
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("TRIAD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TRIAD_TOKEN_SECRET"); v != "" {
		cfg.TokenSecret = v
	}
	if v := os.Getenv("TRIAD_TOKEN_ISSUER"); v != "" {
		cfg.TokenIssuer = v
	}
	if v := os.Getenv("TRIAD_CARDS_PATH"); v != "" {
		cfg.CardsPath = v
	}

	overrides := []struct {
		env   string
		unit  time.Duration
		field *time.Duration
	}{
		{"TRIAD_TOKEN_TTL_HOURS", time.Hour, &cfg.TokenTTL},
		{"TRIAD_IDLE_TIMEOUT_MINUTES", time.Minute, &cfg.IdleTimeout},
		{"TRIAD_REAP_INTERVAL_MINUTES", time.Minute, &cfg.ReapInterval},
		{"TRIAD_GRACE_PERIOD_SECONDS", time.Second, &cfg.GracePeriod},
	}
	for _, o := range overrides {
		v := os.Getenv(o.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid %s: %q", o.env, v)
		}
		*o.field = time.Duration(n) * o.unit
	}

	if v := os.Getenv("TRIAD_MAX_PAYLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid TRIAD_MAX_PAYLOAD_BYTES: %q", v)
		}
		cfg.MaxPayload = n
	}
	return nil
}
