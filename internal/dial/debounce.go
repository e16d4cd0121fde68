package dial

import "time"

// Debouncer rejects contact bounce on a single line, turning raw samples
// into clean edges. It commits a level change only when the sampled level
// differs from the last stable level and at least the window has elapsed
// since the last committed change.
type Debouncer struct {
	window     time.Duration
	stable     Level
	lastChange time.Time
}

// NewDebouncer creates a debouncer with the given window. The initial stable
// level is High, the rest level of an active-low switch with a pull-up.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{
		window: window,
		stable: High,
	}
}

// Submit feeds one raw sample. It returns the committed edge and true when
// the sample flips the stable level, or a zero Edge and false otherwise.
func (d *Debouncer) Submit(level Level, t time.Time) (Edge, bool) {
	if level == d.stable {
		return Edge{}, false
	}
	if !d.lastChange.IsZero() && t.Sub(d.lastChange) < d.window {
		// Still inside the bounce window of the previous edge.
		return Edge{}, false
	}
	d.stable = level
	d.lastChange = t
	return Edge{Level: level, Time: t}, true
}

// Stable returns the current debounced level.
func (d *Debouncer) Stable() Level {
	return d.stable
}

// Seed sets the stable level without emitting an edge. Used at startup when
// the hardware reports the actual line level before watching begins.
func (d *Debouncer) Seed(level Level) {
	d.stable = level
}
