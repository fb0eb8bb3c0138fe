package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samaelod/enlil/config"
	"github.com/samaelod/enlil/tui"
)

var (
	cfgFile string

	// Shared state set during PersistentPreRun
	appConfig *config.Config
)

// rootCmd is the base command; running it with no subcommand opens the
// interactive bench.
var rootCmd = &cobra.Command{
	Use:   "enlil",
	Short: "Bidirectional payload streaming bench over point-to-point radio links",
	Long: `Enlil is a workbench for the bidirectional payload streaming protocol:
two nodes on a point-to-point link, each either transmitting payload
streams or draining them, switching roles on 't'/'r' commands.

Without a subcommand it opens the interactive TUI bench on an in-memory
loopback pair. The run and scenario subcommands drive the same protocol
headlessly, capture decodes recorded payload traffic.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		appConfig, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(version, appConfig)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default enlil.json, .enlil.json, ~/.config/enlil/config.json)")
}
