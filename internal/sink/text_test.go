package sink

import (
	"strings"
	"testing"
	"time"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

var ts = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func TestTextFullDialCycle(t *testing.T) {
	var buf strings.Builder
	s := NewText(&buf)

	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventStarted})
	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventPulse, Pulses: 1})
	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventPulse, Pulses: 2})
	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventPulse, Pulses: 3})
	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventEnded})
	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventDigit, Digit: 3, Pulses: 3})

	want := "[Dial started turning]\n" +
		".[1].[2].[3]\n" +
		"[Dial returned to rest]\n" +
		"Digit dialed: 3 (3 pulses)\n"
	if got := buf.String(); got != want {
		t.Errorf("output:\n%q\nwant:\n%q", got, want)
	}
}

func TestTextDigitZero(t *testing.T) {
	var buf strings.Builder
	s := NewText(&buf)

	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventDigit, Digit: 0, Pulses: 10})

	want := "Digit dialed: 0 (10 pulses)\n"
	if got := buf.String(); got != want {
		t.Errorf("output: %q, want %q", got, want)
	}
}

func TestTextSafetyTimeoutWithDigit(t *testing.T) {
	var buf strings.Builder
	s := NewText(&buf)

	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventSafetyTimeout, Pulses: 3})

	want := "[Safety timeout - dial may be stuck]\n" +
		"Digit dialed: 3 (3 pulses)\n"
	if got := buf.String(); got != want {
		t.Errorf("output: %q, want %q", got, want)
	}
}

func TestTextSafetyTimeoutWithoutDigit(t *testing.T) {
	for _, pulses := range []int{0, 11} {
		var buf strings.Builder
		s := NewText(&buf)

		s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventSafetyTimeout, Pulses: pulses})

		want := "[Safety timeout - dial may be stuck]\n"
		if got := buf.String(); got != want {
			t.Errorf("pulses=%d: output %q, want %q", pulses, got, want)
		}
	}
}

func TestTextNewlineAfterDotsOnlyOnce(t *testing.T) {
	var buf strings.Builder
	s := NewText(&buf)

	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventPulse, Pulses: 1})
	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventEnded})
	s.Deliver(dial.Event{Timestamp: ts, Type: dial.EventDigit, Digit: 1, Pulses: 1})

	want := ".[1]\n[Dial returned to rest]\nDigit dialed: 1 (1 pulses)\n"
	if got := buf.String(); got != want {
		t.Errorf("output: %q, want %q", got, want)
	}
}

func TestMultiFansOut(t *testing.T) {
	a := &Fake{}
	b := &Fake{}
	m := Multi{a, b}

	m.Deliver(dial.Event{Timestamp: ts, Type: dial.EventStarted})
	m.Deliver(dial.Event{Timestamp: ts, Type: dial.EventEnded})

	for name, f := range map[string]*Fake{"a": a, "b": b} {
		if len(f.Events) != 2 {
			t.Fatalf("sink %s: got %d events, want 2", name, len(f.Events))
		}
		if f.Events[0].Type != dial.EventStarted || f.Events[1].Type != dial.EventEnded {
			t.Errorf("sink %s: unexpected order %v", name, f.Types())
		}
	}
}

func TestFakeReset(t *testing.T) {
	f := &Fake{}
	f.Deliver(dial.Event{Type: dial.EventStarted})
	f.Reset()
	if len(f.Events) != 0 {
		t.Errorf("expected no events after reset, got %d", len(f.Events))
	}
}
