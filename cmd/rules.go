package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"socforge/core"
	"socforge/detect"
	"socforge/mitre"
)

// newRulesCmd creates the 'rules' command with subcommands
func newRulesCmd() *cobra.Command {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect and validate detection rules",
	}

	rulesCmd.AddCommand(newRulesListCmd())
	rulesCmd.AddCommand(newRulesValidateCmd())

	return rulesCmd
}

// newRulesListCmd creates the 'rules list' subcommand
func newRulesListCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the active rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			logger := initLogger(cfg)
			defer logger.Sync()

			rules, diags, err := loadRuleSet(cfg, rulesPath, logger)
			if err != nil {
				return err
			}

			if outputJSON {
				return outputAsJSON(rules)
			}

			headerColor.Printf("Active rules (%d):\n", len(rules))
			for _, r := range rules {
				status := successColor.Sprint("enabled")
				if !r.Enabled {
					status = warningColor.Sprint("disabled")
				}
				fmt.Printf("  %-28s %-10s %-9s %s  [%s]\n",
					r.Name, r.RuleType, r.Severity, status, r.ID)
			}
			printDiagnostics(diags)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Rules YAML file or directory")

	return cmd
}

// newRulesValidateCmd creates the 'rules validate' subcommand
func newRulesValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a rules YAML file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := initLogger(loadConfig())
			defer logger.Sync()

			rules, diags, err := detect.LoadRules(args[0], logger)
			if err != nil {
				return err
			}

			if outputJSON {
				return outputAsJSON(struct {
					Valid       []core.DetectionRule `json:"valid"`
					Diagnostics []core.Diagnostic    `json:"diagnostics"`
				}{rules, diags})
			}

			if len(diags) == 0 {
				successColor.Printf("All %d rules valid\n", len(rules))
				return nil
			}
			warningColor.Printf("%d valid, %d rejected:\n", len(rules), len(diags))
			printDiagnostics(diags)
			return fmt.Errorf("%d invalid rules", len(diags))
		},
	}
}

// newCoverageCmd creates the 'coverage' subcommand
func newCoverageCmd() *cobra.Command {
	var rulesPath string

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Show MITRE ATT&CK coverage of the active rule set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			logger := initLogger(cfg)
			defer logger.Sync()

			rules, _, err := loadRuleSet(cfg, rulesPath, logger)
			if err != nil {
				return err
			}

			var techniques []string
			for _, r := range rules {
				if r.Enabled && r.MitreTechniqueID != "" {
					techniques = append(techniques, r.MitreTechniqueID)
				}
			}

			matrix := mitre.CoverageMatrix(techniques)
			if outputJSON {
				return outputAsJSON(matrix)
			}

			headerColor.Println("ATT&CK coverage:")
			for _, tc := range matrix {
				marker := infoColor
				if tc.Detected > 0 {
					marker = successColor
				}
				marker.Printf("  %-24s %d/%d techniques\n", tc.Tactic, tc.Detected, tc.Total)
				for _, t := range tc.Techniques {
					if t.Detected {
						fmt.Printf("      %s %s\n", t.ID, t.Name)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Rules YAML file or directory")

	return cmd
}
