package engine

import (
	"time"

	"github.com/samaelod/enlil/types"
)

// StreamCycle runs one full transmit cycle: flush any stale unsent payload,
// then push every payload of the stream in strict ascending order. A failed
// attempt is re-armed and retried without advancing; the cycle aborts once
// the failure limit is reached. The send loop itself never sleeps, so the
// reported elapsed time reflects only the transport.
func (e *Engine) StreamCycle() types.CycleReport {
	e.Radio.FlushTX()

	payload := make([]byte, e.payloadSize)
	position := 0
	failures := 0

	start := time.Now()
	for position < e.payloadSize {
		FillPayload(payload, position)
		if !e.Radio.Send(payload) {
			failures++
			e.Radio.ReuseTX()
		} else {
			e.record('T', payload)
			position++
		}

		if failures >= e.failLimit {
			break
		}
	}
	elapsed := time.Since(start)

	report := types.CycleReport{
		Position: position,
		Failures: failures,
		Elapsed:  elapsed,
		Aborted:  failures >= e.failLimit,
		Marker:   Marker(position),
	}
	if !report.Aborted && position > 0 {
		report.Marker = Marker(position - 1)
	}

	e.mu.Lock()
	e.cycles++
	last := report
	e.last = &last
	e.mu.Unlock()

	if report.Aborted {
		e.logf("too many failures, aborting at payload '%c'", report.Marker)
	}
	e.logf("time to transmit = %d us with %d failures detected", report.Micros(), report.Failures)

	return report
}
