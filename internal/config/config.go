package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"launchdash/internal/errors"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Admin   AdminConfig   `yaml:"admin"`
	Data    DataConfig    `yaml:"data"`
	Slider  SliderConfig  `yaml:"slider"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `yaml:"port"`
	GinMode string `yaml:"gin_mode"`
}

// AdminConfig holds the pprof/metrics/health listener settings
type AdminConfig struct {
	Port    string `yaml:"port"`
	Enabled bool   `yaml:"enabled"`
}

// DataConfig names the launch table source: a CSV/XLSX path or a database DSN
type DataConfig struct {
	Source string `yaml:"source"`
}

// SliderConfig holds the payload range control bounds
type SliderConfig struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// Marks returns the labelled slider positions, one per step
func (s SliderConfig) Marks() []float64 {
	if s.Step <= 0 {
		return []float64{s.Min, s.Max}
	}
	var marks []float64
	for v := s.Min; v <= s.Max; v += s.Step {
		marks = append(marks, v)
	}
	return marks
}

// SessionConfig controls how long idle dashboard sessions are kept
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8050", GinMode: "release"},
		Admin:   AdminConfig{Port: "6060", Enabled: true},
		Data:    DataConfig{Source: "spacex_launch_dash.csv"},
		Slider:  SliderConfig{Min: 0, Max: 10000, Step: 1000},
		Session: SessionConfig{TTL: 30 * time.Minute, SweepInterval: time.Minute},
		Log:     LogConfig{Level: "INFO"},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// DASH_CONFIG (if any), then environment variables, and validates it.
func Load() (*Config, error) {
	config := Default()

	if path := os.Getenv("DASH_CONFIG"); path != "" {
		if err := loadFile(path, config); err != nil {
			return nil, errors.Wrap(err, "failed to load configuration file")
		}
	}

	applyEnv(config)

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func loadFile(path string, config *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, config); err != nil {
		return errors.WithCode(errors.CodeConfigInvalid, fmt.Errorf("failed to parse %s: %w", path, err))
	}
	return nil
}

func applyEnv(config *Config) {
	config.Server.Port = getEnvOrDefault("PORT", config.Server.Port)
	config.Server.GinMode = getEnvOrDefault("GIN_MODE", config.Server.GinMode)
	config.Admin.Port = getEnvOrDefault("ADMIN_PORT", config.Admin.Port)
	config.Admin.Enabled = getEnvBoolOrDefault("ADMIN_ENABLED", config.Admin.Enabled)
	config.Data.Source = getEnvOrDefault("DATA_SOURCE", config.Data.Source)
	config.Slider.Min = getEnvFloatOrDefault("SLIDER_MIN", config.Slider.Min)
	config.Slider.Max = getEnvFloatOrDefault("SLIDER_MAX", config.Slider.Max)
	config.Slider.Step = getEnvFloatOrDefault("SLIDER_STEP", config.Slider.Step)
	config.Session.TTL = getEnvDurationOrDefault("SESSION_TTL", config.Session.TTL)
	config.Session.SweepInterval = getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", config.Session.SweepInterval)
	config.Log.Level = getEnvOrDefault("LOG_LEVEL", config.Log.Level)
}

func validateConfig(config *Config) error {
	if config.Data.Source == "" {
		return errors.ConfigInvalid("DATA_SOURCE is required")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if config.Admin.Enabled && config.Admin.Port == config.Server.Port {
		return errors.ConfigInvalid("ADMIN_PORT must differ from PORT")
	}
	if config.Slider.Max <= config.Slider.Min {
		return errors.ConfigInvalid("SLIDER_MAX must be greater than SLIDER_MIN")
	}
	if config.Slider.Step <= 0 {
		return errors.ConfigInvalid("SLIDER_STEP must be positive")
	}
	if config.Session.TTL <= 0 || config.Session.SweepInterval <= 0 {
		return errors.ConfigInvalid("SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
