// internal/config/toolcfg.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// ToolConfig carries tool-wide knobs loaded from the optional YAML config
// file. Everything has a default; the file's absence is not an error.
type ToolConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`

	// DownloadTimeout bounds each component archive download attempt.
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`

	// ConnectTimeout bounds the SSH dial.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`

	// RetryDelay is the fixed sleep between failed download attempts.
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

// LoadToolConfig reads config.yaml from the tool config directory with
// viper, falling back to defaults when the file is missing.
func LoadToolConfig() (*ToolConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))
	}
	v.AddConfigPath(".")

	v.SetDefault("log_level", "info")
	v.SetDefault("download_timeout", 10*time.Minute)
	v.SetDefault("connect_timeout", 10*time.Second)
	v.SetDefault("retry_delay", 5*time.Second)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read tool config: %w", err)
		}
	}

	var cfg ToolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool config: %w", err)
	}
	return &cfg, nil
}
