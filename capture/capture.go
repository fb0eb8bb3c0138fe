package capture

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const (
	DirSent    byte = 'T' // payload pushed by a streamer
	DirDrained byte = 'R' // payload consumed by a drain
)

// linkUser0 is DLT_USER0, reserved for private use.
const linkUser0 = layers.LinkType(147)

var ErrClosed = errors.New("capture: writer closed")

// Writer appends payload records to a pcap file. Both nodes of a bench pair
// share one Writer, so records interleave in wall-clock order.
type Writer struct {
	mu     sync.Mutex
	f      *os.File
	pw     *pcapgo.Writer
	count  int
	closed bool
}

// Create opens path and writes the file header. The snap length covers the
// direction byte plus one full payload.
func Create(path string, payloadSize int) (*Writer, error) {
	if payloadSize < 1 || payloadSize > 32 {
		payloadSize = 32
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("capture: create %s: %w", path, err)
	}

	pw := pcapgo.NewWriter(f)
	if err := pw.WriteFileHeader(uint32(payloadSize+1), linkUser0); err != nil {
		f.Close()
		return nil, fmt.Errorf("capture: file header: %w", err)
	}

	return &Writer{f: f, pw: pw}, nil
}

// Record appends one payload with its direction byte.
func (w *Writer) Record(dir byte, payload []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}

	frame := make([]byte, 1+len(payload))
	frame[0] = dir
	copy(frame[1:], payload)

	ci := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: len(frame),
		Length:        len(frame),
	}
	if err := w.pw.WritePacket(ci, frame); err != nil {
		return fmt.Errorf("capture: write record: %w", err)
	}
	w.count++
	return nil
}

// Count reports records written so far.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrClosed
	}
	w.closed = true
	return w.f.Close()
}
