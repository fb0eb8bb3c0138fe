package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/types"
)

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestNewEngineStartsListening(t *testing.T) {
	m := &mockRadio{}
	eng := engine.NewEngine("a", m, engine.Options{})

	if got := eng.Mode(); got != types.ModeReceive {
		t.Fatalf("new node mode = %v, want %v", got, types.ModeReceive)
	}
	calls := m.listenCalls()
	if len(calls) != 1 || !calls[0] {
		t.Fatalf("listen calls = %v, want [true]", calls)
	}
}

func TestRoleTransitions(t *testing.T) {
	m := &mockRadio{}
	eng := engine.NewEngine("a", m, engine.Options{})

	eng.Apply(types.CommandTransmitter)
	if got := eng.Mode(); got != types.ModeTransmit {
		t.Fatalf("after transmit command: mode = %v, want %v", got, types.ModeTransmit)
	}
	if calls := m.listenCalls(); len(calls) != 2 || calls[1] {
		t.Fatalf("listen calls = %v, want [true false]", calls)
	}

	// A repeat of the active role changes nothing
	eng.Apply(types.CommandTransmitter)
	if calls := m.listenCalls(); len(calls) != 2 {
		t.Fatalf("repeated transmit command touched the transport: %v", calls)
	}

	eng.Apply(types.CommandReceiver)
	if got := eng.Mode(); got != types.ModeReceive {
		t.Fatalf("after receive command: mode = %v, want %v", got, types.ModeReceive)
	}
	if calls := m.listenCalls(); len(calls) != 3 || !calls[2] {
		t.Fatalf("listen calls = %v, want [true false true]", calls)
	}

	eng.Apply(types.CommandReceiver)
	eng.Apply(types.CommandNone)
	if calls := m.listenCalls(); len(calls) != 3 {
		t.Fatalf("no-op commands touched the transport: %v", calls)
	}
}

func TestReceiptsResetOnTransmit(t *testing.T) {
	m := &mockRadio{}
	eng := engine.NewEngine("a", m, engine.Options{PayloadSize: 8})

	for i := 0; i < 3; i++ {
		m.inject([]byte("XXXXXXXX"))
		if !eng.DrainOnce() {
			t.Fatalf("drain %d: no payload pending", i+1)
		}
	}
	if got := eng.Receipts(); got != 3 {
		t.Fatalf("receipts = %d, want 3", got)
	}

	eng.Apply(types.CommandTransmitter)
	if got := eng.Receipts(); got != 0 {
		t.Fatalf("receipts after role switch = %d, want 0", got)
	}

	// Switching back does not resurrect the old count
	eng.Apply(types.CommandReceiver)
	if got := eng.Receipts(); got != 0 {
		t.Fatalf("receipts after switching back = %d, want 0", got)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	m := &mockRadio{}
	eng := engine.NewEngine("a", m, engine.Options{
		PayloadSize: 8,
		CommandWait: time.Millisecond,
		Settle:      time.Millisecond,
	})

	eng.Start()
	eng.Start()
	if !eng.Running() {
		t.Fatal("node not running after Start")
	}

	eng.Deliver(types.CommandTransmitter)
	waitFor(t, "a transmit cycle", func() bool {
		snap := eng.Snapshot()
		return snap.Mode == types.ModeTransmit && snap.Cycles >= 1
	})

	eng.Stop()
	eng.Stop()
	if eng.Running() {
		t.Fatal("node still running after Stop")
	}

	if log := eng.Log.ReadAll(); !strings.Contains(log, "node stopped") {
		t.Fatalf("log missing stop line:\n%s", log)
	}
}

func TestSnapshotIsolated(t *testing.T) {
	m := &mockRadio{}
	eng := engine.NewEngine("a", m, engine.Options{PayloadSize: 8})

	eng.StreamCycle()

	snap := eng.Snapshot()
	if snap.Last == nil {
		t.Fatal("snapshot has no cycle report")
	}
	snap.Last.Position = -1

	if again := eng.Snapshot(); again.Last.Position != 8 {
		t.Fatalf("mutating a snapshot leaked into the node: position = %d", again.Last.Position)
	}
}
