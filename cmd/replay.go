package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"socforge/core"
	"socforge/correlate"
	"socforge/detect"
)

// ReplayReport is the JSON output of the replay command
type ReplayReport struct {
	Events      int                             `json:"events"`
	Alerts      []*core.Alert                   `json:"alerts"`
	Incidents   []*core.Incident                `json:"incidents"`
	Timelines   map[string][]core.TimelineEntry `json:"timelines,omitempty"`
	Diagnostics []core.Diagnostic               `json:"diagnostics,omitempty"`
}

// newReplayCmd creates the 'replay' subcommand
func newReplayCmd() *cobra.Command {
	var (
		rulesPath     string
		outFile       string
		withTimelines bool
	)

	cmd := &cobra.Command{
		Use:   "replay <events.json>",
		Short: "Run detection and correlation over an event file",
		Long: `Replay a JSON event batch through the detection engine, correlate the
resulting alerts into incidents, and report the outcome.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			logger := initLogger(cfg)
			defer logger.Sync()

			events, err := readEvents(args[0])
			if err != nil {
				return err
			}

			rules, diags, err := loadRuleSet(cfg, rulesPath, logger)
			if err != nil {
				return err
			}

			engine := detect.NewEngine(detect.WithLogger(logger))
			alerts, detectDiags, err := engine.Evaluate(events, rules)
			if err != nil {
				return fmt.Errorf("detection failed: %w", err)
			}
			diags = append(diags, detectDiags...)

			correlatorOpts := []correlate.Option{correlate.WithLogger(logger)}
			if cfg != nil && cfg.Correlation.MinAlerts > 0 {
				correlatorOpts = append(correlatorOpts, correlate.WithMinAlerts(cfg.Correlation.MinAlerts))
			}
			correlator := correlate.NewEngine(correlatorOpts...)
			result, err := correlator.Correlate(alerts, nil)
			if err != nil {
				return fmt.Errorf("correlation failed: %w", err)
			}

			report := &ReplayReport{
				Events:      len(events),
				Alerts:      alerts,
				Incidents:   result.Created,
				Diagnostics: diags,
			}
			if withTimelines {
				report.Timelines = make(map[string][]core.TimelineEntry, len(result.Created))
				for _, inc := range result.Created {
					report.Timelines[inc.ID] = correlate.BuildTimeline(inc, events, alerts)
				}
			}

			if outFile != "" || outputJSON {
				if err := writeReport(report, outFile); err != nil {
					return err
				}
			}
			if !quiet && !outputJSON {
				printReplaySummary(report)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rulesPath, "rules", "r", "", "Rules YAML file or directory (adds to built-in rules)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write full JSON report to file")
	cmd.Flags().BoolVar(&withTimelines, "timelines", false, "Include per-incident timelines in the report")

	return cmd
}

func readEvents(path string) ([]*core.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	var events []*core.Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("failed to parse events file: %w", err)
	}
	return events, nil
}

func writeReport(report *ReplayReport, outFile string) error {
	if outFile == "" {
		return outputAsJSON(report)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func printReplaySummary(report *ReplayReport) {
	headerColor.Println("Replay summary")
	fmt.Printf("  events evaluated: %d\n", report.Events)
	fmt.Printf("  alerts generated: %d\n", len(report.Alerts))
	fmt.Printf("  incidents created: %d\n", len(report.Incidents))

	for _, inc := range report.Incidents {
		sevColor := severityColor(inc.Severity)
		sevColor.Printf("  [%s]", inc.Severity)
		fmt.Printf(" %s\n", inc.Title)
		fmt.Printf("      alerts=%d events=%d phase=%s priority=%s\n",
			inc.AlertCount, inc.EventCount, inc.KillChainPhase, inc.Priority)
		if len(inc.MitreTactics) > 0 {
			fmt.Printf("      tactics=%v techniques=%v\n", inc.MitreTactics, inc.MitreTechniques)
		}
	}

	if len(report.Diagnostics) > 0 {
		warningColor.Printf("  %d diagnostics:\n", len(report.Diagnostics))
		printDiagnostics(report.Diagnostics)
	}
	if len(report.Alerts) == 0 {
		infoColor.Println("  no rule matched the event batch")
	} else {
		successColor.Println("  done")
	}
}

func severityColor(sev core.Severity) *color.Color {
	switch sev {
	case core.SeverityCritical:
		return errorColor
	case core.SeverityHigh:
		return color.New(color.FgRed)
	case core.SeverityMedium:
		return warningColor
	default:
		return infoColor
	}
}
