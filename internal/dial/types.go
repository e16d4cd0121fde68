// Package dial contains the pure pulse-dial decoding core: the per-line
// signal conditioner and the dial state machine. This package has NO external
// dependencies (no GPIO, MQTT, OS, or time.Sleep). Time is always injectable
// via time.Time parameters.
package dial

import "time"

// Line identifies one of the two rotary dial switch inputs.
type Line int

const (
	// LinePulse is the pulse contact: opens briefly once per count while
	// the dial rotates back to rest.
	LinePulse Line = iota
	// LineShunt is the off-normal contact: closed (Low) while the dial is
	// away from rest, open (High) at rest.
	LineShunt
)

// String returns the line name for logging.
func (l Line) String() string {
	switch l {
	case LinePulse:
		return "PULSE"
	case LineShunt:
		return "SHUNT"
	}
	return "UNKNOWN"
}

// Level is the logical level of an input line. The switches are active-low
// with pull-ups, so the rest level of both lines is High.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

// String returns the level name for logging.
func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Phase is the dial state machine phase.
type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseDialing Phase = "DIALING"
)

// Sample is a raw reading of one input line at a moment in time, before
// debouncing.
type Sample struct {
	Line  Line
	Level Level
	Time  time.Time
}

// Edge is a debounced level change on a single line.
type Edge struct {
	Level Level
	Time  time.Time
}

// EventType identifies a dial event variant.
type EventType string

const (
	// EventStarted marks the dial leaving its rest position.
	EventStarted EventType = "DIAL_STARTED"
	// EventEnded marks the dial returning to rest.
	EventEnded EventType = "DIAL_ENDED"
	// EventPulse is progress feedback: one counted pulse while dialing.
	EventPulse EventType = "PULSE"
	// EventDigit carries a decoded digit after a completed cycle.
	EventDigit EventType = "DIGIT"
	// EventSafetyTimeout reports an abandoned or malformed cycle.
	EventSafetyTimeout EventType = "SAFETY_TIMEOUT"
)

// Event is emitted by the state machine and delivered to sinks.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// Digit is the decoded digit 0..9. Valid only for EventDigit.
	Digit int
	// Pulses is the pulse count behind the event. Set for EventPulse,
	// EventDigit and EventSafetyTimeout.
	Pulses int
}

// Counts tracks the number of each event type since startup.
type Counts struct {
	Started  int
	Ended    int
	Pulses   int
	Digits   int
	Timeouts int
}

// Default timing constants. Callers may override them; these match the
// reference hardware.
const (
	// DefaultPulseDebounce is the debounce window for the pulse contact.
	// The contact fires at roughly 10 Hz during rotation and must not be
	// slurred, so the window stays short.
	DefaultPulseDebounce = 20 * time.Millisecond
	// DefaultShuntDebounce is the debounce window for the shunt contact,
	// which sees slower mechanical motion and larger arcing.
	DefaultShuntDebounce = 50 * time.Millisecond
	// DefaultSafetyTimeout is the time since the last pulse after which a
	// dialing cycle is abandoned (guards against a shunt stuck Low).
	DefaultSafetyTimeout = 3000 * time.Millisecond
	// MaxTickPeriod bounds the delay between a safety-timeout condition
	// becoming true and its observation.
	MaxTickPeriod = 50 * time.Millisecond
)

// MaxPulses is the largest pulse count that maps to a digit. Ten pulses
// encode digit 0 by telephony convention.
const MaxPulses = 10

// DigitForPulses maps a pulse count in 1..10 to its digit. Callers must not
// pass counts outside that range.
func DigitForPulses(pulses int) int {
	if pulses == MaxPulses {
		return 0
	}
	return pulses
}
