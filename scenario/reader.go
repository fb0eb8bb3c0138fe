package scenario

import (
	"fmt"

	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/samaelod/enlil/types"
)

// ReadScenario executes a Lua file and maps the table it returns onto a
// Scenario. The script index is built here so callers can run it directly.
func ReadScenario(path string) (*types.Scenario, error) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return nil, err
	}

	// Scenario file returns one table
	lv := L.Get(-1)
	table, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("lua file did not return a table")
	}

	var sc types.Scenario

	if err := gluamapper.Map(table, &sc); err != nil {
		return nil, err
	}

	if err := ValidateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	sc.IndexScript()

	return &sc, nil
}

// ValidateScenario checks node names, commands, fault windows, and setting
// ranges. Zero settings are allowed; they fall back to the app config.
func ValidateScenario(sc *types.Scenario) error {
	s := sc.Settings
	if s.PayloadSize < 0 || s.PayloadSize > 32 {
		return fmt.Errorf("settings: payload_size %d out of range 1..32", s.PayloadSize)
	}
	if s.CommandWait < 0 || s.Settle < 0 || s.FailLimit < 0 || s.Ticks < 0 {
		return fmt.Errorf("settings: negative values are not allowed")
	}

	for i, f := range sc.Faults {
		if f.At < 0 {
			return fmt.Errorf("fault %d: negative attempt index %d", i, f.At)
		}
		if f.Count <= 0 {
			return fmt.Errorf("fault %d: count must be positive, got %d", i, f.Count)
		}
		if !validNode(f.Node) && f.Node != "" {
			return fmt.Errorf("fault %d: unknown node %q", i, f.Node)
		}
	}

	for i, st := range sc.Script {
		if st.AtTick < 0 {
			return fmt.Errorf("step %d: negative tick %d", i, st.AtTick)
		}
		if !validNode(st.Node) {
			return fmt.Errorf("step %d: unknown node %q", i, st.Node)
		}
		if st.Command != "transmit" && st.Command != "receive" {
			return fmt.Errorf("step %d: unknown command %q", i, st.Command)
		}
	}

	return nil
}

func validNode(name string) bool {
	return name == "a" || name == "b"
}
