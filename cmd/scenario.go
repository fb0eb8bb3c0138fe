package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samaelod/enlil/capture"
	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/scenario"
)

var (
	scenarioCapture string
	scenarioKeep    bool
	scenarioVerbose bool
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <file>",
	Short: "Run a Lua scenario script headlessly",
	Long: `Load a Lua scenario, build a loopback pair with the scenario's fault
windows armed, run the scripted ticks, and print the outcome.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scenario.ReadScenario(args[0])
		if err != nil {
			return fmt.Errorf("failed to load scenario: %w", err)
		}

		if scenarioKeep {
			kept, err := scenario.SaveToRecent(sc, args[0])
			if err != nil {
				return fmt.Errorf("failed to keep scenario: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "kept %s\n", kept)
		}

		var cw *capture.Writer
		if scenarioCapture != "" {
			size := sc.Settings.PayloadSize
			if size == 0 {
				size = appConfig.PayloadSize
			}
			cw, err = capture.Create(scenarioCapture, size)
			if err != nil {
				return fmt.Errorf("failed to create capture: %w", err)
			}
			defer cw.Close()
		}

		logger := engine.NewLogger("", appConfig.LogLines)
		defer logger.Close()
		if scenarioVerbose {
			logger.SetEcho(cmd.OutOrStdout())
		}

		res, err := scenario.Run(appConfig, sc, logger, cw)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "scenario %q: %d steps, %d faults\n",
			sc.Name, len(sc.Script), len(sc.Faults))
		printSummary(cmd.OutOrStdout(), res)
		if cw != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "captured %d records to %s\n", cw.Count(), scenarioCapture)
		}
		return nil
	},
}

func init() {
	scenarioCmd.Flags().StringVar(&scenarioCapture, "capture", "", "write sent and drained payloads to this pcap file")
	scenarioCmd.Flags().BoolVar(&scenarioKeep, "keep", false, "copy the scenario into the recent directory")
	scenarioCmd.Flags().BoolVarP(&scenarioVerbose, "verbose", "v", false, "stream session log lines to stdout")

	rootCmd.AddCommand(scenarioCmd)
}
