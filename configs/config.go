// Package configs loads and validates the speech-coach application
// configuration from config files, environment and flags via viper.
package configs

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose      bool   `mapstructure:"verbose"`
	LogLevel     string `mapstructure:"log_level"`
	OutputFormat string `mapstructure:"output_format"`
	DataDir      string `mapstructure:"data_dir"`

	// Audio decoding configuration
	Audio AudioConfig `mapstructure:"audio"`

	// Upload storage configuration
	Upload UploadConfig `mapstructure:"upload"`

	// Database configuration
	Database DatabaseConfig `mapstructure:"database"`

	// Batch analysis configuration
	Batch BatchConfig `mapstructure:"batch"`
}

// AudioConfig contains audio decoding settings
type AudioConfig struct {
	SampleRate  int    `mapstructure:"sample_rate"`
	FFmpegPath  string `mapstructure:"ffmpeg_path"`
	ScratchDir  string `mapstructure:"scratch_dir"`
	KeepScratch bool   `mapstructure:"keep_scratch"`
}

// UploadConfig contains recording storage settings
type UploadConfig struct {
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig contains persistence settings. An empty URL selects
// the in-memory store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// BatchConfig contains batch analysis settings
type BatchConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// LoadConfig loads configuration from viper with defaults applied
func LoadConfig() (*Config, error) {
	return LoadConfigFromViper(viper.GetViper())
}

// LoadConfigFromViper loads configuration from a specific viper instance
func LoadConfigFromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks the configuration for invalid combinations
func (c *Config) Validate() error {
	// The extractor's framing constants assume 16 kHz; other rates
	// would silently change every stored metric.
	if c.Audio.SampleRate != 16000 {
		return fmt.Errorf("audio.sample_rate must be 16000, got %d", c.Audio.SampleRate)
	}
	if c.Batch.MaxConcurrent < 1 {
		return fmt.Errorf("batch.max_concurrent must be at least 1, got %d", c.Batch.MaxConcurrent)
	}
	switch c.OutputFormat {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("output_format must be json, yaml or table, got %q", c.OutputFormat)
	}
	return nil
}
