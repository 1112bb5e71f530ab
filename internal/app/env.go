package app

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig holds settings read from HYDRATE_* environment variables. They
// take precedence over values stored with `hydrate config set`.
type EnvConfig struct {
	DBPath            string        `env:"HYDRATE_DB_PATH"`
	TextgenURL        string        `env:"HYDRATE_TEXTGEN_URL"`
	TextgenAPIKey     string        `env:"HYDRATE_TEXTGEN_API_KEY"`
	TextgenModel      string        `env:"HYDRATE_TEXTGEN_MODEL"`
	TextgenTimeout    time.Duration `env:"HYDRATE_TEXTGEN_TIMEOUT"`
	ReminderNamespace string        `env:"HYDRATE_REMINDER_NAMESPACE"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := env.Parse(&cfg); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Resolve fills empty fields from stored settings, keyed the same way as the
// app_config table.
func (c EnvConfig) Resolve(stored map[string]string) EnvConfig {
	if c.TextgenURL == "" {
		c.TextgenURL = stored["textgen_url"]
	}
	if c.TextgenModel == "" {
		c.TextgenModel = stored["textgen_model"]
	}
	if c.TextgenTimeout <= 0 {
		if d, err := time.ParseDuration(stored["textgen_timeout"]); err == nil && d > 0 {
			c.TextgenTimeout = d
		}
	}
	if c.ReminderNamespace == "" {
		c.ReminderNamespace = stored["reminder_namespace"]
	}
	return c
}
