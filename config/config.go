package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"socforge/core"
	"socforge/simulate"
)

// Config holds all configuration for the SOCForge tooling
type Config struct {
	Logging struct {
		Level  string `mapstructure:"level"`  // debug, info, warn, error
		Format string `mapstructure:"format"` // json, console
	} `mapstructure:"logging"`

	Rules struct {
		// Path is a rules YAML file or a directory of YAML files
		Path string `mapstructure:"path"`
		// IncludeBuiltin controls whether the built-in rule set is loaded
		IncludeBuiltin bool `mapstructure:"include_builtin"`
	} `mapstructure:"rules"`

	Detection struct {
		RegexCacheSize int `mapstructure:"regex_cache_size"`
		BatchSize      int `mapstructure:"batch_size"` // events per evaluation pass
	} `mapstructure:"detection"`

	Correlation struct {
		// MinAlerts is the minimum group size before an incident is created
		MinAlerts int `mapstructure:"min_alerts"`
	} `mapstructure:"correlation"`

	Simulation struct {
		Intensity     string        `mapstructure:"intensity"` // low, medium, high
		Duration      time.Duration `mapstructure:"duration"`
		IncludeBenign bool          `mapstructure:"include_benign"`
		Seed          int64         `mapstructure:"seed"` // 0 = non-deterministic
	} `mapstructure:"simulation"`
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")

	viper.SetDefault("rules.path", "")
	viper.SetDefault("rules.include_builtin", true)

	viper.SetDefault("detection.regex_cache_size", 256)
	viper.SetDefault("detection.batch_size", 10000)

	viper.SetDefault("correlation.min_alerts", 2)

	viper.SetDefault("simulation.intensity", string(simulate.IntensityMedium))
	viper.SetDefault("simulation.duration", 5*time.Minute)
	viper.SetDefault("simulation.include_benign", true)
	viper.SetDefault("simulation.seed", int64(0))
}

// loadFromEnv sets up environment variable loading
func loadFromEnv() {
	viper.SetEnvPrefix("SOCFORGE")
	viper.AutomaticEnv()

	_ = viper.BindEnv("logging.level", "SOCFORGE_LOG_LEVEL")
	_ = viper.BindEnv("rules.path", "SOCFORGE_RULES_PATH")
	_ = viper.BindEnv("simulation.seed", "SOCFORGE_SIM_SEED")
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig() (*Config, error) {
	viper.SetConfigName("socforge")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()
	loadFromEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, will use defaults and env vars
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration for correctness
func validateConfig(config *Config) error {
	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q (must be debug, info, warn, or error)", config.Logging.Level)
	}

	switch config.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging.format: %q (must be json or console)", config.Logging.Format)
	}

	if config.Detection.RegexCacheSize < 1 {
		return fmt.Errorf("detection.regex_cache_size must be positive, got %d", config.Detection.RegexCacheSize)
	}
	if config.Detection.BatchSize < 1 {
		return fmt.Errorf("detection.batch_size must be positive, got %d", config.Detection.BatchSize)
	}

	if config.Correlation.MinAlerts < 2 {
		return fmt.Errorf("correlation.min_alerts must be at least 2, got %d", config.Correlation.MinAlerts)
	}

	switch simulate.Intensity(config.Simulation.Intensity) {
	case simulate.IntensityLow, simulate.IntensityMedium, simulate.IntensityHigh:
	default:
		return fmt.Errorf("invalid simulation.intensity: %q (must be low, medium, or high)", config.Simulation.Intensity)
	}
	if config.Simulation.Duration <= 0 {
		return fmt.Errorf("simulation.duration must be positive, got %v", config.Simulation.Duration)
	}

	return nil
}

// ParseSeverity validates a severity filter value from configuration
func ParseSeverity(value string) (core.Severity, error) {
	sev := core.Severity(value)
	if sev.Rank() < 0 {
		return "", fmt.Errorf("invalid severity: %q", value)
	}
	return sev, nil
}
