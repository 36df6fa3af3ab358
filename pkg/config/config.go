package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/aifabrix/connector-engine/pkg/retry"
)

// Config holds all configuration for the connector engine.
// Configuration can come from a YAML file (connector.yaml) or environment
// variables; environment variables always override YAML values.
type Config struct {
	// Env labels the target environment (local, staging, production).
	Env string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`

	// LogLevel controls diagnostic verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// Version is set at load time, not from config.
	Version string `yaml:"-"`

	// Dataplane configures the remote pipeline test endpoint.
	Dataplane DataplaneConfig `yaml:"dataplane"`
}

// DataplaneConfig holds connection and retry settings for the pipeline test
// endpoint.
type DataplaneConfig struct {
	// URL is the dataplane base URL. Required for integration tests only;
	// offline validation never touches it.
	URL string `yaml:"url" env:"DATAPLANE_URL" env-default:""`

	// TimeoutMS is the per-call timeout in milliseconds.
	TimeoutMS int `yaml:"timeout_ms" env:"DATAPLANE_TIMEOUT_MS" env-default:"30000"`

	// MaxRetries is the number of retries after a failed call.
	MaxRetries int `yaml:"max_retries" env:"DATAPLANE_MAX_RETRIES" env-default:"3"`

	// BackoffMS is the initial retry backoff in milliseconds; it doubles on
	// every retry.
	BackoffMS int `yaml:"backoff_ms" env:"DATAPLANE_BACKOFF_MS" env-default:"1000"`
}

// ConfigFile is the well-known config file name, read when present.
const ConfigFile = "connector.yaml"

// Load reads configuration from connector.yaml with environment variable
// overrides. A missing config file is not an error; the engine then runs on
// environment variables and defaults alone.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if err := cleanenv.ReadConfig(ConfigFile, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read %s: %w", ConfigFile, err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.Dataplane.validate(); err != nil {
		return nil, fmt.Errorf("invalid dataplane configuration: %w", err)
	}

	return cfg, nil
}

func (d *DataplaneConfig) validate() error {
	if d.URL == "" {
		return nil
	}
	u, err := url.Parse(d.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url %q is not an absolute URL", d.URL)
	}
	return nil
}

// Timeout returns the per-call timeout as a duration.
func (d *DataplaneConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMS) * time.Millisecond
}

// RetryConfig converts the dataplane retry settings into a retry.Config.
func (d *DataplaneConfig) RetryConfig() *retry.Config {
	return &retry.Config{
		MaxRetries:   d.MaxRetries,
		InitialDelay: time.Duration(d.BackoffMS) * time.Millisecond,
		Multiplier:   2.0,
	}
}
