package radio

import "sync"

// Loopback is one side of an in-memory link. Both sides share a single lock
// so a send touching the peer's ring can never deadlock against the peer's
// own drain.
type Loopback struct {
	mu   *sync.Mutex
	peer *Loopback

	rx        ring
	listening bool
	closed    bool

	armed     bool // a failed payload is queued for retry
	delivered int
	refused   int
	rearmed   int
}

// NewLoopbackPair returns two linked transports. Neither side is listening
// until SetListening(true); a send to a non-listening peer fails like a
// send into dead air.
func NewLoopbackPair() (*Loopback, *Loopback) {
	mu := &sync.Mutex{}
	a := &Loopback{mu: mu}
	b := &Loopback{mu: mu}
	a.peer = b
	b.peer = a
	return a, b
}

func (l *Loopback) FlushTX() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.armed = false
}

// Send copies the payload into the peer's receive ring. It fails when the
// link is closed, the peer is not listening, or the peer's ring is full;
// the last case is the backpressure a streamer's retry loop works against.
func (l *Loopback) Send(payload []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || l.peer == nil || l.peer.closed {
		l.refused++
		return false
	}
	if !l.peer.listening {
		l.refused++
		return false
	}

	frame := make([]byte, len(payload))
	copy(frame, payload)
	if !l.peer.rx.push(frame) {
		l.refused++
		return false
	}

	l.armed = false
	l.delivered++
	return true
}

func (l *Loopback) ReuseTX() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.armed = true
	l.rearmed++
}

func (l *Loopback) Available() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rx.count > 0
}

// Receive copies the oldest pending payload into buf. Short frames leave the
// tail of buf untouched; callers size buf to the fixed payload size.
func (l *Loopback) Receive(buf []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()

	frame, ok := l.rx.pop()
	if !ok {
		return
	}
	copy(buf, frame)
}

// SetListening toggles receive readiness. Entering the listen state discards
// anything that arrived while the node was transmitting.
func (l *Loopback) SetListening(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if on && !l.listening {
		l.rx.reset()
	}
	l.listening = on
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrClosed
	}
	l.closed = true
	l.listening = false
	l.rx.reset()
	return nil
}

// Stats reports this side's counters for the bench link panel.
func (l *Loopback) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		Delivered: l.delivered,
		Refused:   l.refused,
		Rearmed:   l.rearmed,
		Pending:   l.rx.count,
	}
}
