package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socforge/core"
)

// chdir mirrors testing.T.Chdir (Go 1.24+), which is unavailable on this toolchain.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.True(t, cfg.Rules.IncludeBuiltin)
	assert.Equal(t, 256, cfg.Detection.RegexCacheSize)
	assert.Equal(t, 10000, cfg.Detection.BatchSize)
	assert.Equal(t, 2, cfg.Correlation.MinAlerts)
	assert.Equal(t, "medium", cfg.Simulation.Intensity)
	assert.Equal(t, 5*time.Minute, cfg.Simulation.Duration)
	assert.True(t, cfg.Simulation.IncludeBenign)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("SOCFORGE_LOG_LEVEL", "debug")
	t.Setenv("SOCFORGE_RULES_PATH", "/etc/socforge/rules")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/etc/socforge/rules", cfg.Rules.Path)
}

func defaultConfigForTest(t *testing.T) *Config {
	t.Helper()
	viper.Reset()
	chdir(t, t.TempDir())
	cfg, err := LoadConfig()
	require.NoError(t, err)
	return cfg
}

func TestValidateConfigRejectsBadLogLevel(t *testing.T) {
	cfg := defaultConfigForTest(t)
	cfg.Logging.Level = "verbose"
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfigRejectsBadIntensity(t *testing.T) {
	cfg := defaultConfigForTest(t)
	cfg.Simulation.Intensity = "extreme"
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfigRejectsMinAlertsBelowTwo(t *testing.T) {
	cfg := defaultConfigForTest(t)
	cfg.Correlation.MinAlerts = 1
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfigRejectsZeroCacheSize(t *testing.T) {
	cfg := defaultConfigForTest(t)
	cfg.Detection.RegexCacheSize = 0
	assert.Error(t, validateConfig(cfg))
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity("high")
	require.NoError(t, err)
	assert.Equal(t, core.SeverityHigh, sev)

	_, err = ParseSeverity("urgent")
	assert.Error(t, err)
}
