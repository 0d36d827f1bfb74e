package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override the config file.
// Nested keys use a double underscore: TALLY_LOG__LEVEL=debug.
const EnvPrefix = "TALLY_"

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all user-facing configuration for guess-tally.
type Config struct {
	Data    DataConfig    `toml:"data" koanf:"data"`
	Round   RoundConfig   `toml:"round" koanf:"round"`
	Links   LinksConfig   `toml:"links" koanf:"links"`
	Webhook WebhookConfig `toml:"webhook" koanf:"webhook"`
	Log     LogConfig     `toml:"log" koanf:"log"`
	Metrics MetricsConfig `toml:"metrics" koanf:"metrics"`
	Server  ServerConfig  `toml:"server" koanf:"server"`
}

type DataConfig struct {
	// Dir holds roundlist.csv, aliases.csv, Rounds/ and the archive database.
	Dir        string `toml:"dir" koanf:"dir"`
	Transcript string `toml:"transcript" koanf:"transcript"`
}

type RoundConfig struct {
	Timezone string `toml:"timezone" koanf:"timezone"`
}

// LinksConfig lists the optional links appended to a round announcement.
type LinksConfig struct {
	SubmissionTrackerURL   string `toml:"submission_tracker_url" koanf:"submission_tracker_url"`
	SubmissionTrackerLabel string `toml:"submission_tracker_label" koanf:"submission_tracker_label"`
	LeaderboardURL         string `toml:"leaderboard_url" koanf:"leaderboard_url"`
	LeaderboardLabel       string `toml:"leaderboard_label" koanf:"leaderboard_label"`
	RulesURL               string `toml:"rules_url" koanf:"rules_url"`
	RulesLabel             string `toml:"rules_label" koanf:"rules_label"`
}

type WebhookConfig struct {
	URL string `toml:"url" koanf:"url"`
	// RateLimit is the number of webhook posts allowed per second.
	RateLimit float64 `toml:"rate_limit" koanf:"rate_limit"`
}

type LogConfig struct {
	Level string `toml:"level" koanf:"level"`
}

type MetricsConfig struct {
	// Textfile, when set, receives run counters in Prometheus text format.
	Textfile string `toml:"textfile" koanf:"textfile"`
}

type ServerConfig struct {
	Host string `toml:"host" koanf:"host"`
	Port int    `toml:"port" koanf:"port"`
}

// Defaults returns a Config populated with built-in default values.
func Defaults() *Config {
	return &Config{
		Data:    DataConfig{Dir: ".", Transcript: "submissions.txt"},
		Round:   RoundConfig{Timezone: "UTC"},
		Webhook: WebhookConfig{RateLimit: 0.5},
		Log:     LogConfig{Level: "info"},
		Server:  ServerConfig{Host: "localhost", Port: 8080},
	}
}

// Load reads a TOML config file over the defaults and then applies TALLY_*
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	k := koanf.New(".")
	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading environment: %w", err)
	}
	if len(k.Keys()) == 0 {
		return nil
	}
	conf := koanf.UnmarshalConf{Tag: "koanf", FlatPaths: false}
	if err := k.UnmarshalWithConf("", cfg, conf); err != nil {
		return fmt.Errorf("%w: environment: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("%w: data.dir must not be empty", ErrInvalidConfig)
	}
	if c.Webhook.RateLimit <= 0 {
		return fmt.Errorf("%w: webhook.rate_limit must be positive", ErrInvalidConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	return nil
}
