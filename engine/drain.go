package engine

// DrainOnce consumes at most one pending payload into the node's reusable
// buffer and bumps the receipt counter. An empty transport is a normal tick
// outcome, not an error; receive needs no retry path.
func (e *Engine) DrainOnce() bool {
	if !e.Radio.Available() {
		return false
	}

	e.Radio.Receive(e.buf)

	e.mu.Lock()
	e.receipts++
	n := e.receipts
	e.mu.Unlock()

	e.record('R', e.buf)
	e.logf("received: %s - %d", e.buf, n)

	return true
}
