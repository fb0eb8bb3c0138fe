package engine_test

import (
	"sync"

	"github.com/samaelod/enlil/radio"
)

// mockRadio scripts a transport for protocol tests: per-attempt send
// results, a log of delivered payloads, and an injectable receive queue.
type mockRadio struct {
	mu sync.Mutex

	script   []bool // result per send attempt; exhausted attempts use failAll
	failAll  bool
	attempts int

	sent    [][]byte
	flushes int
	rearms  int

	rx     [][]byte
	listen []bool // SetListening call log
}

var _ radio.Transport = (*mockRadio)(nil)

func (m *mockRadio) FlushTX() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
}

func (m *mockRadio) Send(payload []byte) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.attempts
	m.attempts++

	ok := !m.failAll
	if n < len(m.script) {
		ok = m.script[n]
	}
	if !ok {
		return false
	}

	frame := make([]byte, len(payload))
	copy(frame, payload)
	m.sent = append(m.sent, frame)
	return true
}

func (m *mockRadio) ReuseTX() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rearms++
}

func (m *mockRadio) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rx) > 0
}

func (m *mockRadio) Receive(buf []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rx) == 0 {
		return
	}
	copy(buf, m.rx[0])
	m.rx = m.rx[1:]
}

func (m *mockRadio) SetListening(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listen = append(m.listen, on)
}

func (m *mockRadio) Close() error { return nil }

func (m *mockRadio) inject(payload []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frame := make([]byte, len(payload))
	copy(frame, payload)
	m.rx = append(m.rx, frame)
}

func (m *mockRadio) listenCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]bool, len(m.listen))
	copy(out, m.listen)
	return out
}

func (m *mockRadio) sentPayloads() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]byte, len(m.sent))
	for i, p := range m.sent {
		frame := make([]byte, len(p))
		copy(frame, p)
		out[i] = frame
	}
	return out
}

func (m *mockRadio) counts() (attempts, flushes, rearms int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts, m.flushes, m.rearms
}
