package radio_test

import (
	"testing"

	"github.com/samaelod/enlil/radio"
	"github.com/samaelod/enlil/types"
)

func TestFaultyWindow(t *testing.T) {
	a, b := radio.NewLoopbackPair()
	b.SetListening(true)

	f := radio.NewFaulty(a, []types.Fault{{At: 2, Count: 3}})

	want := []bool{true, true, false, false, false, true, true}
	for i, ok := range want {
		if got := f.Send([]byte{byte(i)}); got != ok {
			t.Errorf("attempt %d: send = %v, want %v", i, got, ok)
		}
	}

	if got := f.Attempts(); got != len(want) {
		t.Errorf("attempts = %d, want %d", got, len(want))
	}

	// Dropped attempts never reach the wrapped link
	if st := a.Stats(); st.Delivered != 4 || st.Refused != 0 {
		t.Errorf("link stats = %+v, want delivered 4 refused 0", st)
	}
}

func TestFaultyMultipleWindows(t *testing.T) {
	a, b := radio.NewLoopbackPair()
	b.SetListening(true)

	f := radio.NewFaulty(a, []types.Fault{
		{At: 0, Count: 1},
		{At: 3, Count: 2},
	})

	want := []bool{false, true, true, false, false, true}
	for i, ok := range want {
		if got := f.Send([]byte{byte(i)}); got != ok {
			t.Errorf("attempt %d: send = %v, want %v", i, got, ok)
		}
	}
}

func TestFaultyPassthrough(t *testing.T) {
	a, b := radio.NewLoopbackPair()
	b.SetListening(true)

	f := radio.NewFaulty(a, nil)
	if !f.Send([]byte("x")) {
		t.Fatal("fault-free send failed")
	}
	f.ReuseTX()
	if st := a.Stats(); st.Rearmed != 1 {
		t.Errorf("rearm did not pass through: %+v", st)
	}
	if !b.Available() {
		t.Error("payload not pending on peer")
	}
}
