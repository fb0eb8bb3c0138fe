package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samaelod/enlil/capture"
	"github.com/samaelod/enlil/radio"
	"github.com/samaelod/enlil/types"
)

const (
	defaultPayloadSize = 32
	defaultCommandWait = 500 * time.Millisecond
	defaultSettle      = 500 * time.Millisecond
	defaultFailLimit   = 100
)

// Options configure a node. Zero values fall back to the protocol defaults;
// PayloadSize is clamped to the 1..32 radio frame range.
type Options struct {
	PayloadSize int
	CommandWait time.Duration
	Settle      time.Duration
	FailLimit   int

	Log      *Logger // shared pair logger; built from LogPath when nil
	LogPath  string
	LogLines int

	Capture *capture.Writer
}

// Engine drives one node over a radio transport, ticking through command
// sampling, role-conditional work, and the post-cycle settle.
type Engine struct {
	Name  string
	Radio radio.Transport
	Log   *Logger

	mu       sync.Mutex
	mode     types.Mode
	receipts int
	cycles   int
	last     *types.CycleReport
	running  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	cmds chan types.Command
	buf  []byte

	payloadSize int
	commandWait time.Duration
	settle      time.Duration
	failLimit   int
	cap         *capture.Writer
}

// NewEngine builds a node on rt. Nodes boot as receivers, so the transport
// is put into the listen state here, before the first tick.
func NewEngine(name string, rt radio.Transport, opts Options) *Engine {
	if opts.PayloadSize < 1 || opts.PayloadSize > 32 {
		opts.PayloadSize = defaultPayloadSize
	}
	if opts.CommandWait <= 0 {
		opts.CommandWait = defaultCommandWait
	}
	if opts.Settle < 0 {
		opts.Settle = defaultSettle
	}
	if opts.FailLimit <= 0 {
		opts.FailLimit = defaultFailLimit
	}
	if opts.Log == nil {
		opts.Log = NewLogger(opts.LogPath, opts.LogLines)
	}

	e := &Engine{
		Name:        name,
		Radio:       rt,
		Log:         opts.Log,
		mode:        types.ModeReceive,
		cmds:        make(chan types.Command, 8),
		buf:         make([]byte, opts.PayloadSize),
		payloadSize: opts.PayloadSize,
		commandWait: opts.CommandWait,
		settle:      opts.Settle,
		failLimit:   opts.FailLimit,
		cap:         opts.Capture,
	}

	rt.SetListening(true)

	return e
}

// Start spawns the tick loop. Safe to call again after Stop.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.done = make(chan struct{})
	e.running = true

	go e.run(e.ctx, e.done)
}

// Stop cancels the tick loop and waits for it to exit. Mode, counters, and
// the transport listen state survive a stop; Start resumes where it left off.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	cancel()
	<-done

	e.mu.Lock()
	e.running = false
	e.mu.Unlock()

	e.logf("node stopped")
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	e.logf("*** press 't' to begin transmitting to the other node")

	for {
		cmd := e.sampleCommand(ctx)
		if ctx.Err() != nil {
			return
		}

		e.Apply(cmd)

		if e.Mode() == types.ModeTransmit {
			e.StreamCycle()

			// Keep the stream readable on the other end
			select {
			case <-time.After(e.settle):
			case <-ctx.Done():
				return
			}
		} else {
			e.DrainOnce()
		}
	}
}

// sampleCommand blocks for up to the command wait; a tick proceeds with
// CommandNone when nothing arrives in time.
func (e *Engine) sampleCommand(ctx context.Context) types.Command {
	select {
	case cmd := <-e.cmds:
		return cmd
	case <-time.After(e.commandWait):
		return types.CommandNone
	case <-ctx.Done():
		return types.CommandNone
	}
}

// Deliver queues a role command for the next tick. Extra commands beyond the
// queue depth are dropped, matching a console that samples one key per tick.
func (e *Engine) Deliver(cmd types.Command) {
	if cmd == types.CommandNone {
		return
	}
	select {
	case e.cmds <- cmd:
	default:
	}
}

// Apply is the role controller. Switching into the transmitter role resets
// the receipt counter and leaves the listen state; switching back restores
// it. A command matching the active mode is a no-op, and there are no error
// paths.
func (e *Engine) Apply(cmd types.Command) {
	e.mu.Lock()

	switch {
	case cmd == types.CommandTransmitter && e.mode == types.ModeReceive:
		e.mode = types.ModeTransmit
		e.receipts = 0
		e.mu.Unlock()

		e.Radio.SetListening(false)
		e.logf("*** switching to transmit role -- press 'r' to switch back")

	case cmd == types.CommandReceiver && e.mode == types.ModeTransmit:
		e.mode = types.ModeReceive
		e.mu.Unlock()

		e.Radio.SetListening(true)
		e.logf("*** switching to receive role -- press 't' to switch back")

	default:
		e.mu.Unlock()
	}
}

// Mode returns the node's current role.
func (e *Engine) Mode() types.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// Receipts returns payloads drained since the node last became a receiver.
func (e *Engine) Receipts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.receipts
}

// Running reports whether the tick loop is live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Snapshot returns a copy of the node's state for UIs.
func (e *Engine) Snapshot() types.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := types.Snapshot{
		Name:     e.Name,
		Mode:     e.mode,
		Running:  e.running,
		Receipts: e.receipts,
		Cycles:   e.cycles,
	}
	if e.last != nil {
		last := *e.last
		snap.Last = &last
	}
	return snap
}

func (e *Engine) record(dir byte, payload []byte) {
	if e.cap == nil {
		return
	}
	if err := e.cap.Record(dir, payload); err != nil {
		e.logf("capture: %v", err)
	}
}

func (e *Engine) logf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	ts := time.Now().Format("15:04:05")
	e.Log.Write(fmt.Sprintf("[%s] [%s] %s", ts, e.Name, msg))
}
