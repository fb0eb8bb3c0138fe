package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samaelod/enlil/capture"
)

var captureCmd = &cobra.Command{
	Use:   "capture <file>",
	Short: "List the payload records in a capture file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := capture.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read capture: %w", err)
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no records")
			return nil
		}

		start := records[0].Time
		for i, r := range records {
			delta := r.Time.Sub(start).Microseconds()
			fmt.Fprintf(cmd.OutOrStdout(), "%4d  +%8d us  %c  %c  %s\n",
				i, delta, r.Dir, r.Marker(), printable(r.Payload))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d records\n", len(records))
		return nil
	},
}

// printable masks control bytes so payloads stay one terminal line each.
func printable(p []byte) string {
	out := make([]byte, len(p))
	for i, b := range p {
		if b >= 32 && b < 127 {
			out[i] = b
		} else {
			out[i] = '.'
		}
	}
	return string(out)
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
