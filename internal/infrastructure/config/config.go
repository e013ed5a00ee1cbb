package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "clinadm/internal/shared/config"
)

type Config struct {
	API     sharedConfig.APIConfig     `mapstructure:"api"`
	Session sharedConfig.SessionConfig `mapstructure:"session"`
	Logger  sharedConfig.LoggerConfig  `mapstructure:"logger"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is not an error: the console is expected to run
// from defaults plus CLINADM_* environment overrides on a fresh machine.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(appDir())
	viper.AddConfigPath("./configs")

	viper.SetEnvPrefix("CLINADM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("api.base_url", "http://127.0.0.1:8000")
	viper.SetDefault("api.timeout_seconds", 30)

	viper.SetDefault("session.token_path", filepath.Join(appDir(), "token"))

	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_path", "stderr")
}

func appDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".clinadm"
	}
	return filepath.Join(home, ".clinadm")
}
