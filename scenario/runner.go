package scenario

import (
	"fmt"

	"github.com/samaelod/enlil/capture"
	"github.com/samaelod/enlil/config"
	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/radio"
	"github.com/samaelod/enlil/types"
)

// Result is the outcome of one scripted run.
type Result struct {
	A, B   types.Snapshot
	Ticks  int
	StatsA radio.Stats
	StatsB radio.Stats
}

// Run executes a scenario on a fresh loopback pair without wall-clock
// pacing: every tick first applies the script's commands, then ticks node a
// and node b in that order. Send-attempt faults are armed per node side
// before the first tick. A nil cfg falls back to the app config.
func Run(cfg *config.Config, sc *types.Scenario, log *engine.Logger, cw *capture.Writer) (*Result, error) {
	if cfg == nil {
		var err error
		cfg, err = config.LoadDefault()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	size := sc.Settings.PayloadSize
	if size == 0 {
		size = cfg.PayloadSize
	}
	limit := sc.Settings.FailLimit
	if limit == 0 {
		limit = cfg.FailLimit
	}

	la, lb := radio.NewLoopbackPair()
	ta, tb := ArmFaults(sc, la, lb)

	opts := engine.Options{
		PayloadSize: size,
		FailLimit:   limit,
		Log:         log,
		Capture:     cw,
	}
	a := engine.NewEngine("a", ta, opts)
	b := engine.NewEngine("b", tb, opts)

	if sc.ScriptByTick == nil {
		sc.IndexScript()
	}

	ticks := sc.Settings.Ticks
	if ticks <= 0 {
		// Run through the tick of the last scripted step
		last := 0
		for _, st := range sc.Script {
			if st.AtTick > last {
				last = st.AtTick
			}
		}
		ticks = last + 1
	}

	for tick := 0; tick < ticks; tick++ {
		for _, st := range sc.ScriptByTick[tick] {
			cmd := st.ParseStep()
			switch st.Node {
			case "a":
				a.Apply(cmd)
			case "b":
				b.Apply(cmd)
			}
		}

		tickNode(a)
		tickNode(b)
	}

	return &Result{
		A:      a.Snapshot(),
		B:      b.Snapshot(),
		Ticks:  ticks,
		StatsA: la.Stats(),
		StatsB: lb.Stats(),
	}, nil
}

// tickNode runs one node's role work for a scripted tick. A transmitter
// runs one full stream cycle; a receiver drains everything pending, so a
// scripted run's failures come from its fault windows rather than from the
// harness outpacing the drain.
func tickNode(e *engine.Engine) {
	if e.Mode() == types.ModeTransmit {
		e.StreamCycle()
	} else {
		for e.DrainOnce() {
		}
	}
}

// ArmFaults wraps each side of a loopback pair with the scenario's fault
// windows for that node. Sides without faults pass through untouched.
func ArmFaults(sc *types.Scenario, la, lb *radio.Loopback) (radio.Transport, radio.Transport) {
	var ta, tb radio.Transport = la, lb
	if sc == nil {
		return ta, tb
	}

	var faultsA, faultsB []types.Fault
	for _, f := range sc.Faults {
		if f.Node == "b" {
			faultsB = append(faultsB, f)
		} else {
			faultsA = append(faultsA, f)
		}
	}
	if len(faultsA) > 0 {
		ta = radio.NewFaulty(la, faultsA)
	}
	if len(faultsB) > 0 {
		tb = radio.NewFaulty(lb, faultsB)
	}
	return ta, tb
}
