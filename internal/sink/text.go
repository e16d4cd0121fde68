package sink

import (
	"fmt"
	"io"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// Text writes the human-readable reference format, one line per event, with
// per-pulse progress dots while the dial is turning:
//
//	[Dial started turning]
//	.[1].[2].[3]
//	[Dial returned to rest]
//	Digit dialed: 3 (3 pulses)
//
// Write errors are ignored; delivery is total.
type Text struct {
	w io.Writer
	// midline is true after progress dots, so the next full line gets a
	// leading newline.
	midline bool
}

// NewText creates a text sink writing to w.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Deliver renders one event.
func (t *Text) Deliver(e dial.Event) {
	switch e.Type {
	case dial.EventStarted:
		t.line("[Dial started turning]")
	case dial.EventPulse:
		fmt.Fprintf(t.w, ".[%d]", e.Pulses)
		t.midline = true
	case dial.EventEnded:
		t.line("[Dial returned to rest]")
	case dial.EventDigit:
		t.line(fmt.Sprintf("Digit dialed: %d (%d pulses)", e.Digit, e.Pulses))
	case dial.EventSafetyTimeout:
		t.line("[Safety timeout - dial may be stuck]")
		// The abandoned cycle may still hold a valid digit.
		if e.Pulses >= 1 && e.Pulses <= dial.MaxPulses {
			t.line(fmt.Sprintf("Digit dialed: %d (%d pulses)", dial.DigitForPulses(e.Pulses), e.Pulses))
		}
	}
}

func (t *Text) line(s string) {
	if t.midline {
		fmt.Fprintln(t.w)
		t.midline = false
	}
	fmt.Fprintln(t.w, s)
}
