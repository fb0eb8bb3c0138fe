package radio

import "errors"

var (
	ErrClosed   = errors.New("radio: link closed")
	ErrNoPeer   = errors.New("radio: no peer attached")
	ErrBadFrame = errors.New("radio: malformed frame")
)

// Transport is a point-to-point radio link as the protocol core sees it.
// Send is a single non-blocking attempt; a false return is a transient
// failure the caller may retry after ReuseTX. Receive copies exactly
// len(buf) bytes of the oldest pending payload and is only valid after
// Available reports true.
type Transport interface {
	FlushTX()
	Send(payload []byte) bool
	ReuseTX()
	Available() bool
	Receive(buf []byte)
	SetListening(on bool)
	Close() error
}

// Stats counts link activity on one side of a transport.
type Stats struct {
	Delivered int // payloads handed to the peer
	Refused   int // send attempts that failed
	Rearmed   int // ReuseTX calls after a failed attempt
	Pending   int // payloads waiting in the receive ring
}

const ringCapacity = 64

// ring is a fixed FIFO of received payloads. Unlike a radio FIFO that
// overwrites, a full ring refuses new frames so the sending side sees
// backpressure as a failed send.
type ring struct {
	frames [ringCapacity][]byte
	head   int // next pop
	tail   int // next push
	count  int
}

func (r *ring) push(frame []byte) bool {
	if r.count == ringCapacity {
		return false
	}
	r.frames[r.tail] = frame
	r.tail = (r.tail + 1) % ringCapacity
	r.count++
	return true
}

func (r *ring) pop() ([]byte, bool) {
	if r.count == 0 {
		return nil, false
	}
	frame := r.frames[r.head]
	r.frames[r.head] = nil
	r.head = (r.head + 1) % ringCapacity
	r.count--
	return frame, true
}

func (r *ring) reset() {
	for i := range r.frames {
		r.frames[i] = nil
	}
	r.head, r.tail, r.count = 0, 0, 0
}
