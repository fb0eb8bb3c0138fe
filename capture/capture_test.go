package capture_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/samaelod/enlil/capture"
	"github.com/samaelod/enlil/engine"
	"github.com/samaelod/enlil/radio"
	"github.com/samaelod/enlil/types"
)

func TestCaptureRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pcap")

	w, err := capture.Create(path, 8)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := w.Record(capture.DirSent, []byte("A0000001")); err != nil {
		t.Fatalf("record sent: %v", err)
	}
	if err := w.Record(capture.DirDrained, []byte("B1000011")); err != nil {
		t.Fatalf("record drained: %v", err)
	}
	if got := w.Count(); got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	records, err := capture.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("read %d records, want 2", len(records))
	}

	if records[0].Dir != capture.DirSent || string(records[0].Payload) != "A0000001" {
		t.Errorf("record 0 = %c %q", records[0].Dir, records[0].Payload)
	}
	if records[1].Dir != capture.DirDrained || string(records[1].Payload) != "B1000011" {
		t.Errorf("record 1 = %c %q", records[1].Dir, records[1].Payload)
	}
	if records[0].Marker() != 'A' || records[1].Marker() != 'B' {
		t.Errorf("markers = %c %c, want A B", records[0].Marker(), records[1].Marker())
	}

	if (capture.Record{}).Marker() != '?' {
		t.Error("empty record marker should be '?'")
	}
}

func TestCaptureFromBenchPair(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.pcap")
	w, err := capture.Create(path, 8)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	la, lb := radio.NewLoopbackPair()
	a := engine.NewEngine("a", la, engine.Options{PayloadSize: 8, Capture: w})
	b := engine.NewEngine("b", lb, engine.Options{PayloadSize: 8, Capture: w})

	a.Apply(types.CommandTransmitter)
	a.StreamCycle()
	for b.DrainOnce() {
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	records, err := capture.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(records) != 16 {
		t.Fatalf("read %d records, want 16", len(records))
	}

	var sent, drained int
	for _, r := range records {
		switch r.Dir {
		case capture.DirSent:
			sent++
		case capture.DirDrained:
			drained++
		}
	}
	if sent != 8 || drained != 8 {
		t.Errorf("sent %d drained %d, want 8 8", sent, drained)
	}
	if records[0].Dir != capture.DirSent || records[0].Marker() != 'A' {
		t.Errorf("record 0 = %c %c, want T A", records[0].Dir, records[0].Marker())
	}
}

func TestCaptureClosed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "closed.pcap")
	w, err := capture.Create(path, 8)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); !errors.Is(err, capture.ErrClosed) {
		t.Errorf("second close error = %v, want ErrClosed", err)
	}
	if err := w.Record(capture.DirSent, []byte("x")); !errors.Is(err, capture.ErrClosed) {
		t.Errorf("record after close error = %v, want ErrClosed", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := capture.ReadFile(filepath.Join(t.TempDir(), "missing.pcap")); err == nil {
		t.Error("missing file accepted")
	}
}
