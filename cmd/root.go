// Package cmd provides the command-line interface for SOCForge.
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"socforge/config"
	"socforge/core"
	"socforge/detect"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags
var (
	outputJSON bool
	noColor    bool
	quiet      bool
)

// NewRootCmd creates the root command with all subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "socforge",
		Short: "SOC attack simulation and detection toolkit",
		Long: `SOCForge generates synthetic attack telemetry, evaluates detection rules
over event streams, and correlates the resulting alerts into incidents
with MITRE ATT&CK and kill chain context.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")

	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newScenariosCmd())
	rootCmd.AddCommand(newReplayCmd())
	rootCmd.AddCommand(newRulesCmd())
	rootCmd.AddCommand(newCoverageCmd())

	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// initLogger builds the zap logger used by CLI commands.
func initLogger(cfg *config.Config) *zap.SugaredLogger {
	if quiet {
		return zap.NewNop().Sugar()
	}

	level := zapcore.InfoLevel
	if cfg != nil {
		if parsed, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			level = parsed
		}
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg != nil && cfg.Logging.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	zcore := zapcore.NewCore(encoder, zapcore.AddSync(os.Stderr), level)
	return zap.New(zcore).Sugar()
}

// loadConfig loads configuration, falling back to defaults on failure.
func loadConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config load failed, using defaults: %v\n", err)
		return nil
	}
	return cfg
}

// loadRuleSet assembles the active rule set from config and flags.
func loadRuleSet(cfg *config.Config, rulesPath string, logger *zap.SugaredLogger) ([]core.DetectionRule, []core.Diagnostic, error) {
	includeBuiltin := true
	if cfg != nil {
		includeBuiltin = cfg.Rules.IncludeBuiltin
		if rulesPath == "" {
			rulesPath = cfg.Rules.Path
		}
	}

	var rules []core.DetectionRule
	if includeBuiltin {
		rules = append(rules, detect.BuiltinRules()...)
	}

	var diags []core.Diagnostic
	if rulesPath != "" {
		loaded, loadDiags, err := detect.LoadRules(rulesPath, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load rules from %s: %w", rulesPath, err)
		}
		rules = append(rules, loaded...)
		diags = append(diags, loadDiags...)
	}

	return rules, diags, nil
}

func outputAsJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printDiagnostics(diags []core.Diagnostic) {
	for _, d := range diags {
		warningColor.Printf("  diagnostic: rule=%s event=%s: %s\n", d.RuleID, d.EventID, d.Message)
	}
}
