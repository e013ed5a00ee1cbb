package config

import (
	"strings"
	"time"
)

type APIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (a *APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// TrimmedBaseURL returns the base URL without a trailing slash so request
// paths can always be joined with a leading slash.
func (a *APIConfig) TrimmedBaseURL() string {
	return strings.TrimRight(a.BaseURL, "/")
}

type SessionConfig struct {
	TokenPath string `mapstructure:"token_path"`
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}
