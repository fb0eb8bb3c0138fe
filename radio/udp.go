package radio

import (
	"encoding/binary"
	"fmt"
	"net"
	"sync"
	"time"
)

// UDP link wire constants.
const (
	linkMagic   uint16 = 0x454C // "EL"
	linkVersion byte   = 1
	linkHdrSize        = 8 // 2B magic + 1B version + 1B flags + 4B length
	maxPayload         = 32
)

// UDPLink frames payloads over UDP between two fixed endpoints. It satisfies
// the Transport contract for a node pair running on separate hosts.
//
// Frame layout on the wire:
//
//	[2B magic 0x454C][1B version][1B flags][4B length][payload...]
type UDPLink struct {
	conn *net.UDPConn
	peer *net.UDPAddr

	mu        sync.Mutex
	rx        ring
	listening bool
	closed    bool

	armed     bool
	delivered int
	refused   int
	rearmed   int
}

// DialUDP binds the local endpoint and fixes the peer address. A bind
// failure here is the "radio hardware is not responding" condition: the
// caller must not enter its tick loop.
func DialUDP(listen, peer string) (*UDPLink, error) {
	laddr, err := net.ResolveUDPAddr("udp", listen)
	if err != nil {
		return nil, fmt.Errorf("radio: resolve %s: %w", listen, err)
	}
	raddr, err := net.ResolveUDPAddr("udp", peer)
	if err != nil {
		return nil, fmt.Errorf("radio: resolve peer %s: %w", peer, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("radio: listen %s: %w", listen, err)
	}
	return &UDPLink{conn: conn, peer: raddr}, nil
}

// LocalAddr reports the bound endpoint, useful when listening on port 0.
func (u *UDPLink) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

func (u *UDPLink) FlushTX() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.armed = false
}

func (u *UDPLink) Send(payload []byte) bool {
	u.mu.Lock()
	if u.closed {
		u.refused++
		u.mu.Unlock()
		return false
	}
	u.mu.Unlock()

	if len(payload) > maxPayload {
		payload = payload[:maxPayload]
	}

	frame := make([]byte, linkHdrSize+len(payload))
	binary.BigEndian.PutUint16(frame[0:2], linkMagic)
	frame[2] = linkVersion
	frame[3] = 0
	binary.LittleEndian.PutUint32(frame[4:8], uint32(len(payload)))
	copy(frame[linkHdrSize:], payload)

	_, err := u.conn.WriteToUDP(frame, u.peer)

	u.mu.Lock()
	defer u.mu.Unlock()
	if err != nil {
		u.refused++
		return false
	}
	u.armed = false
	u.delivered++
	return true
}

func (u *UDPLink) ReuseTX() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.armed = true
	u.rearmed++
}

// Available pumps any datagrams sitting in the socket into the receive ring,
// then reports whether a payload is pending. The pump uses an already-expired
// read deadline so it never blocks the tick.
func (u *UDPLink) Available() bool {
	u.mu.Lock()
	if u.closed || !u.listening {
		u.mu.Unlock()
		return false
	}
	u.mu.Unlock()

	u.pump(false)

	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rx.count > 0
}

// pump reads until the socket is empty. With discard set the frames are
// thrown away instead of queued (stale traffic from before a listen toggle).
func (u *UDPLink) pump(discard bool) {
	buf := make([]byte, linkHdrSize+maxPayload)
	for {
		u.conn.SetReadDeadline(time.Now())
		n, addr, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return
			}
			return
		}
		if discard {
			continue
		}
		payload, err := decodeFrame(buf[:n])
		if err != nil {
			continue
		}
		// Only the fixed peer may fill the ring
		if addr != nil && u.peer != nil && !addr.IP.Equal(u.peer.IP) {
			continue
		}

		u.mu.Lock()
		u.rx.push(payload)
		u.mu.Unlock()
	}
}

func decodeFrame(frame []byte) ([]byte, error) {
	if len(frame) < linkHdrSize {
		return nil, ErrBadFrame
	}
	if binary.BigEndian.Uint16(frame[0:2]) != linkMagic {
		return nil, ErrBadFrame
	}
	if frame[2] != linkVersion {
		return nil, ErrBadFrame
	}
	length := binary.LittleEndian.Uint32(frame[4:8])
	if int(length) != len(frame)-linkHdrSize || length > maxPayload {
		return nil, ErrBadFrame
	}
	payload := make([]byte, length)
	copy(payload, frame[linkHdrSize:])
	return payload, nil
}

func (u *UDPLink) Receive(buf []byte) {
	u.mu.Lock()
	defer u.mu.Unlock()

	frame, ok := u.rx.pop()
	if !ok {
		return
	}
	copy(buf, frame)
}

// SetListening toggles receive readiness; entering the listen state drains
// stale datagrams off the socket and clears the ring.
func (u *UDPLink) SetListening(on bool) {
	u.mu.Lock()
	wasListening := u.listening
	u.listening = on
	u.mu.Unlock()

	if on && !wasListening {
		u.pump(true)
		u.mu.Lock()
		u.rx.reset()
		u.mu.Unlock()
	}
}

func (u *UDPLink) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.closed {
		return ErrClosed
	}
	u.closed = true
	u.listening = false
	u.rx.reset()
	return u.conn.Close()
}

// Stats reports this side's counters.
func (u *UDPLink) Stats() Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return Stats{
		Delivered: u.delivered,
		Refused:   u.refused,
		Rearmed:   u.rearmed,
		Pending:   u.rx.count,
	}
}
