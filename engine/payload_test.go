package engine_test

import (
	"strings"
	"testing"

	"github.com/samaelod/enlil/engine"
)

func TestMarkerSequence(t *testing.T) {
	tests := []struct {
		pos  int
		want byte
	}{
		{0, 'A'},
		{1, 'B'},
		{25, 'Z'},
		{26, 'a'},
		{31, 'f'},
	}

	for _, tt := range tests {
		if got := engine.Marker(tt.pos); got != tt.want {
			t.Errorf("Marker(%d) = %c, want %c", tt.pos, got, tt.want)
		}
	}

	// Every stream position of a full payload gets a distinct marker
	seen := make(map[byte]int)
	for pos := 0; pos < 32; pos++ {
		m := engine.Marker(pos)
		if prev, dup := seen[m]; dup {
			t.Errorf("Marker(%d) = %c collides with Marker(%d)", pos, m, prev)
		}
		seen[m] = pos
	}
}

func TestFillPayloadPatterns(t *testing.T) {
	// Ones land outside the band and zeros inside; the generator is defined
	// that way, so the expectations pin the inverted form rather than a
	// solid triangle.
	tests := []struct {
		name string
		pos  int
		want string
	}{
		{"first", 0, "A" + strings.Repeat("0", 30) + "1"},
		{"near_mid", 14, "O" + strings.Repeat("1", 14) + "00" + strings.Repeat("1", 15)},
		{"midpoint", 15, "P" + strings.Repeat("1", 31)},
		{"past_alphabet", 26, "a" + "1111" + strings.Repeat("0", 22) + "11111"},
		{"last", 31, "f" + strings.Repeat("0", 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, 32)
			engine.FillPayload(buf, tt.pos)
			if got := string(buf); got != tt.want {
				t.Errorf("FillPayload(%d):\n got %s\nwant %s", tt.pos, got, tt.want)
			}
		})
	}
}

func TestFillPayloadBandWidth(t *testing.T) {
	// The zero band widens as the position moves away from the midpoint
	const n = 32
	mid := (n - 1) / 2

	zeros := func(pos int) int {
		buf := make([]byte, n)
		engine.FillPayload(buf, pos)
		return strings.Count(string(buf[1:]), "0")
	}

	for pos := 0; pos < n; pos++ {
		d := mid - pos
		if d < 0 {
			d = -d
		}
		want := 2 * d
		if want > n-1 {
			want = n - 1
		}
		if got := zeros(pos); got != want {
			t.Errorf("payload %d: %d zeros, want %d", pos, got, want)
		}
	}
}

func TestFillPayloadSmallSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
		pos  int
		want string
	}{
		{"size_one", 1, 0, "A"},
		{"size_two_first", 2, 0, "A1"},
		{"size_two_second", 2, 1, "B0"},
		{"size_eight_first", 8, 0, "A0000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, tt.size)
			engine.FillPayload(buf, tt.pos)
			if got := string(buf); got != tt.want {
				t.Errorf("FillPayload(%d) into %d bytes = %q, want %q", tt.pos, tt.size, got, tt.want)
			}
		})
	}

	// Zero-length buffer is a no-op, not a panic
	engine.FillPayload(nil, 0)
}
