package scenario

import (
	"fmt"
	"io"

	"github.com/samaelod/enlil/types"
)

// WriteScenario emits a scenario back out as a Lua table, in the same shape
// ReadScenario accepts.
func WriteScenario(w io.Writer, sc *types.Scenario) error {
	fmt.Fprintln(w, "local scenario = {}")
	fmt.Fprintln(w)

	if sc.Name != "" {
		fmt.Fprintf(w, "scenario.name = %q\n", sc.Name)
		fmt.Fprintln(w)
	}

	// Settings
	fmt.Fprintln(w, "-- SETTINGS ---------------------------------------")
	fmt.Fprintln(w, "scenario.settings = {")
	fmt.Fprintf(w, "\tpayload_size = %d,\n", sc.Settings.PayloadSize)
	fmt.Fprintf(w, "\tcommand_wait = %d,\n", sc.Settings.CommandWait)
	fmt.Fprintf(w, "\tsettle = %d,\n", sc.Settings.Settle)
	fmt.Fprintf(w, "\tfail_limit = %d,\n", sc.Settings.FailLimit)
	fmt.Fprintf(w, "\tticks = %d,\n", sc.Settings.Ticks)
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)

	// Faults
	fmt.Fprintln(w, "-- FAULTS -----------------------------------------")
	fmt.Fprintln(w, "scenario.faults = {")
	for _, f := range sc.Faults {
		fmt.Fprintln(w, "\t{")
		fmt.Fprintf(w, "\t\tat = %d,\n", f.At)
		fmt.Fprintf(w, "\t\tcount = %d,\n", f.Count)
		if f.Node != "" {
			fmt.Fprintf(w, "\t\tnode = %q,\n", f.Node)
		}
		fmt.Fprintln(w, "\t},")
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)

	// Script
	fmt.Fprintln(w, "-- SCRIPT -----------------------------------------")
	fmt.Fprintln(w, "scenario.script = {")
	for _, st := range sc.Script {
		fmt.Fprintln(w, "\t{")
		fmt.Fprintf(w, "\t\tat_tick = %d,\n", st.AtTick)
		fmt.Fprintf(w, "\t\tnode = %q,\n", st.Node)
		fmt.Fprintf(w, "\t\tcommand = %q,\n", st.Command)
		fmt.Fprintln(w, "\t},")
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "return scenario")

	return nil
}
