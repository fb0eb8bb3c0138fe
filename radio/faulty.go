package radio

import (
	"sync"

	"github.com/samaelod/enlil/types"
)

// Faulty wraps a transport and forces chosen send attempts to fail. Attempt
// indices count every Send call on this side since the wrapper was built,
// which lets a scenario script say "drop attempts 5 through 9" and exercise
// the rearm/retry path deterministically.
type Faulty struct {
	Transport

	mu      sync.Mutex
	attempt int
	faults  []types.Fault
}

func NewFaulty(rt Transport, faults []types.Fault) *Faulty {
	return &Faulty{Transport: rt, faults: faults}
}

func (f *Faulty) Send(payload []byte) bool {
	f.mu.Lock()
	n := f.attempt
	f.attempt++
	drop := false
	for _, w := range f.faults {
		if n >= w.At && n < w.At+w.Count {
			drop = true
			break
		}
	}
	f.mu.Unlock()

	if drop {
		return false
	}
	return f.Transport.Send(payload)
}

// Attempts reports how many sends have been tried through this wrapper.
func (f *Faulty) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempt
}
