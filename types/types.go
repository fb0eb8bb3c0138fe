package types

import "time"

// Mode is the role a node is currently playing. Exactly one mode is active
// at a time; nodes boot into ModeReceive.
type Mode int

const (
	ModeReceive Mode = iota
	ModeTransmit
)

func (m Mode) String() string {
	if m == ModeTransmit {
		return "transmit"
	}
	return "receive"
}

// Command is an external role-switch request sampled once per tick.
type Command int

const (
	CommandNone Command = iota
	CommandTransmitter
	CommandReceiver
)

func (c Command) String() string {
	switch c {
	case CommandTransmitter:
		return "become-transmitter"
	case CommandReceiver:
		return "become-receiver"
	default:
		return "none"
	}
}

// ParseCommand maps a single input byte to a Command. 'T'/'t' request the
// transmitter role, 'R'/'r' the receiver role, everything else is ignored.
func ParseCommand(b byte) Command {
	switch b {
	case 'T', 't':
		return CommandTransmitter
	case 'R', 'r':
		return CommandReceiver
	default:
		return CommandNone
	}
}

// CycleReport is the outcome of one full transmit cycle.
type CycleReport struct {
	Position int           // payloads sent successfully (== PayloadSize when complete)
	Failures int           // send attempts that had to be re-armed
	Elapsed  time.Duration // wall time of the send loop
	Aborted  bool          // failure limit reached before the stream finished
	Marker   byte          // leading marker of the payload in flight when the cycle ended
}

// Micros reports the cycle duration in microseconds.
func (r CycleReport) Micros() int64 {
	return r.Elapsed.Microseconds()
}

// Snapshot is a read-only view of a node's state for UIs and headless runs.
type Snapshot struct {
	Name     string
	Mode     Mode
	Running  bool
	Receipts int // payloads drained since the node last became a receiver
	Cycles   int // transmit cycles completed (including aborted ones)
	Last     *CycleReport
}

// Scenario is a scripted bench session loaded from a Lua file.
type Scenario struct {
	Name     string
	Settings Settings
	Faults   []Fault
	Script   []Step

	ScriptByTick map[int][]Step // pre-indexed steps by tick
}

// Settings override the bench defaults for one scenario. Zero values fall
// back to the app config.
type Settings struct {
	PayloadSize int
	CommandWait int // ms
	Settle      int // ms
	FailLimit   int
	Ticks       int // scenario length; 0 means run until the script ends
}

// Fault marks a window of send attempts that must fail: attempts
// [At, At+Count) counted from the start of the run, on the named node's
// side of the link ("a" when empty).
type Fault struct {
	At    int
	Count int
	Node  string
}

// Step delivers a role command to a node at the start of a tick.
type Step struct {
	AtTick  int
	Node    string // "a" or "b"
	Command string // "transmit" or "receive"
}

// IndexScript populates ScriptByTick for per-tick lookup while running.
func (s *Scenario) IndexScript() {
	s.ScriptByTick = make(map[int][]Step, len(s.Script))
	for _, st := range s.Script {
		s.ScriptByTick[st.AtTick] = append(s.ScriptByTick[st.AtTick], st)
	}
}

// ParseStep converts a Step's command string to a Command.
func (s Step) ParseStep() Command {
	switch s.Command {
	case "transmit":
		return CommandTransmitter
	case "receive":
		return CommandReceiver
	default:
		return CommandNone
	}
}
