// Package config loads runtime configuration from viper: config.yaml in
// $HOME/.skillmcp or the working directory, overridable through
// SKILLMCP_-prefixed environment variables and command-line flags.
package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the decoded runtime configuration.
type Config struct {
	// SkillsDir is the root directory of skill definitions.
	SkillsDir string `mapstructure:"skills_dir"`
	// LogLevel is a logrus level name.
	LogLevel string `mapstructure:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `mapstructure:"log_format"`
	// StatsDB is an optional SQLite path for the search log; empty
	// disables persistence.
	StatsDB string `mapstructure:"stats_db"`

	API     APIConfig     `mapstructure:"api"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	Sampler string  `mapstructure:"sampler"`
	Ratio   float64 `mapstructure:"ratio"`
}

// SetDefaults registers default values on viper. Called once from the
// command bootstrap before flags bind.
func SetDefaults() {
	viper.SetDefault("skills_dir", defaultSkillsDir())
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "text")
	viper.SetDefault("api.host", "127.0.0.1")
	viper.SetDefault("api.port", 8391)
	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.sampler", "always")
	viper.SetDefault("tracing.ratio", 0.1)
}

func defaultSkillsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./skills"
	}
	return filepath.Join(home, ".skillmcp", "skills")
}

// Load decodes the current viper state into a Config.
func Load() (*Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  &cfg,
		TagName: "mapstructure",
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(viper.AllSettings()); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return &cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.SkillsDir == "" {
		return errors.New("skills_dir cannot be empty")
	}
	if c.API.Port < 1 || c.API.Port > 65535 {
		return errors.Errorf("api.port must be between 1 and 65535, got %d", c.API.Port)
	}
	return nil
}
