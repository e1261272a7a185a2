package pointer

// DefaultHandLossTimeoutMs is how long the hand may be missing before the
// pointer is shown as inactive.
const DefaultHandLossTimeoutMs = 500

// Presence tracks whether a hand is currently driving the pointer.
// The timeout is checked lazily on each Lost call; there is no timer.
type Presence struct {
	timeoutMs int64
	lastSeen  int64
	activated bool
}

// NewPresence creates a Presence with the given timeout in milliseconds.
func NewPresence(timeoutMs int64) *Presence {
	return &Presence{timeoutMs: timeoutMs}
}

// Seen records a detected hand at timestampMs.
// It returns true when this call activated the pointer.
func (p *Presence) Seen(timestampMs int64) bool {
	p.lastSeen = timestampMs
	if p.activated {
		return false
	}
	p.activated = true
	return true
}

// Lost records a cycle without a hand at timestampMs.
// It returns true when this call deactivated the pointer, which happens once
// the hand has been missing for longer than the timeout.
func (p *Presence) Lost(timestampMs int64) bool {
	if !p.activated {
		return false
	}
	if timestampMs-p.lastSeen <= p.timeoutMs {
		return false
	}
	p.activated = false
	return true
}

// Reset deactivates the pointer immediately. It returns true when the
// pointer was active.
func (p *Presence) Reset() bool {
	was := p.activated
	p.activated = false
	return was
}

// Activated reports whether the pointer is currently active.
func (p *Presence) Activated() bool {
	return p.activated
}
