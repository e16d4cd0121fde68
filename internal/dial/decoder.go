package dial

import "time"

// Decoder is the dial state machine. It consumes debounced edges plus a
// periodic tick and emits dial events. The caller owns the Decoder from a
// single goroutine; no method is safe for concurrent use.
type Decoder struct {
	safety      time.Duration
	phase       Phase
	pulses      int
	lastPulse   time.Time
	dialStarted time.Time
	counts      Counts
	lastDigit   int
}

// NewDecoder creates a decoder in the Idle phase. safety is the maximum time
// since the last pulse before a dialing cycle is abandoned.
func NewDecoder(safety time.Duration) *Decoder {
	return &Decoder{
		safety:    safety,
		phase:     PhaseIdle,
		lastDigit: -1,
	}
}

// OnEdge dispatches a debounced edge to the handler for its line.
func (d *Decoder) OnEdge(le LineEdge) []Event {
	if le.Line == LineShunt {
		return d.OnShuntEdge(le.Edge.Level, le.Edge.Time)
	}
	return d.OnPulseEdge(le.Edge.Level, le.Edge.Time)
}

// OnPulseEdge handles a debounced transition of the pulse line. Counting
// happens on the High edge — the release of the wiper contact. Counting Low
// edges double-counts because the dial's spring return re-engages each pulse
// cam.
func (d *Decoder) OnPulseEdge(level Level, t time.Time) []Event {
	if d.phase != PhaseDialing || level != High {
		return nil
	}
	d.pulses++
	d.lastPulse = t
	d.counts.Pulses++
	return []Event{{Timestamp: t, Type: EventPulse, Pulses: d.pulses}}
}

// OnShuntEdge handles a debounced transition of the shunt line. A Low edge
// starts a dialing cycle; a High edge completes it and decodes the digit.
func (d *Decoder) OnShuntEdge(level Level, t time.Time) []Event {
	switch d.phase {
	case PhaseIdle:
		if level != Low {
			return nil
		}
		d.phase = PhaseDialing
		d.pulses = 0
		d.dialStarted = t
		d.lastPulse = t
		d.counts.Started++
		return []Event{{Timestamp: t, Type: EventStarted}}

	case PhaseDialing:
		if level != High {
			// Spurious Low while already dialing.
			return nil
		}
		events := []Event{{Timestamp: t, Type: EventEnded}}
		d.counts.Ended++
		switch {
		case d.pulses == 0:
			// Dial spun too little to register anything.
		case d.pulses <= MaxPulses:
			digit := DigitForPulses(d.pulses)
			d.lastDigit = digit
			d.counts.Digits++
			events = append(events, Event{
				Timestamp: t,
				Type:      EventDigit,
				Digit:     digit,
				Pulses:    d.pulses,
			})
		default:
			// Too many pulses for one digit; never report a false digit.
			d.counts.Timeouts++
			events = append(events, Event{
				Timestamp: t,
				Type:      EventSafetyTimeout,
				Pulses:    d.pulses,
			})
		}
		d.reset()
		return events
	}
	return nil
}

// OnTick drives the safety timeout. It must be called at least every
// MaxTickPeriod; calling it while Idle is a no-op. A shunt switch that never
// re-closes would otherwise leave the machine Dialing forever.
func (d *Decoder) OnTick(t time.Time) []Event {
	if d.phase != PhaseDialing {
		return nil
	}
	if t.Sub(d.lastPulse) <= d.safety {
		return nil
	}
	pulses := d.pulses
	if pulses >= 1 && pulses <= MaxPulses {
		d.lastDigit = DigitForPulses(pulses)
	}
	d.counts.Timeouts++
	d.reset()
	return []Event{{Timestamp: t, Type: EventSafetyTimeout, Pulses: pulses}}
}

func (d *Decoder) reset() {
	d.phase = PhaseIdle
	d.pulses = 0
}

// Phase returns the current phase of the machine.
func (d *Decoder) Phase() Phase {
	return d.phase
}

// LastDigit returns the most recently decoded digit, or -1 if none has been
// decoded since startup.
func (d *Decoder) LastDigit() int {
	return d.lastDigit
}

// Counts returns a copy of the event counters.
func (d *Decoder) Counts() Counts {
	return d.counts
}
