package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"socforge/core"
	"socforge/simulate"
)

// newSimulateCmd creates the 'simulate' subcommand
func newSimulateCmd() *cobra.Command {
	var (
		scenario  string
		intensity string
		duration  time.Duration
		seed      int64
		benign    bool
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate synthetic attack telemetry",
		Long: `Generate a batch of synthetic events for one attack scenario.
Events are emitted as a JSON array, sorted by timestamp, suitable as
input to the replay command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			logger := initLogger(cfg)
			defer logger.Sync()

			if cfg != nil {
				if intensity == "" {
					intensity = cfg.Simulation.Intensity
				}
				if duration == 0 {
					duration = cfg.Simulation.Duration
				}
				if seed == 0 {
					seed = cfg.Simulation.Seed
				}
				if !cmd.Flags().Changed("benign") {
					benign = cfg.Simulation.IncludeBenign
				}
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			gen := simulate.NewGenerator(
				simulate.WithSeed(seed),
				simulate.WithLogger(logger),
			)
			events, err := gen.Generate(simulate.Scenario(scenario), simulate.Options{
				Intensity:     simulate.Intensity(intensity),
				Duration:      duration,
				IncludeBenign: benign,
			})
			if err != nil {
				return err
			}

			if err := writeEvents(events, outFile); err != nil {
				return err
			}

			if !quiet && outFile != "" {
				successColor.Printf("Generated %d events (scenario=%s, seed=%d) -> %s\n",
					len(events), scenario, seed, outFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&scenario, "scenario", "s", string(simulate.ScenarioFullAttackChain), "Scenario to run (see 'scenarios')")
	cmd.Flags().StringVarP(&intensity, "intensity", "i", "", "Event volume: low, medium, high")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Simulated time span (e.g. 5m)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 = time-based)")
	cmd.Flags().BoolVar(&benign, "benign", true, "Mix in benign background traffic")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")

	return cmd
}

func writeEvents(events []*core.Event, outFile string) error {
	out := os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

// newScenariosCmd creates the 'scenarios' subcommand
func newScenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List available simulation scenarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios := simulate.AvailableScenarios()
			if outputJSON {
				return outputAsJSON(scenarios)
			}

			headerColor.Println("Available scenarios:")
			for _, s := range scenarios {
				infoColor.Printf("  %-20s", s.ID)
				fmt.Printf(" %s\n", s.Name)
				fmt.Printf("    %s\n", s.Description)
				fmt.Printf("    severity=%s events=%s\n", s.Severity, s.EstimatedEvents)
			}
			return nil
		},
	}
}
