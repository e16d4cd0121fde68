// Package sink delivers dial events to their consumers. Delivery is total:
// a sink never fails and never blocks the decode path, which is why the main
// loop (not the producer) calls Deliver.
package sink

import "github.com/Schop/rotary-dial-test/internal/dial"

// Sink consumes dial events.
type Sink interface {
	Deliver(e dial.Event)
}

// Multi fans one event out to several sinks, in order.
type Multi []Sink

// Deliver passes the event to every sink.
func (m Multi) Deliver(e dial.Event) {
	for _, s := range m {
		s.Deliver(e)
	}
}

// Fake records delivered events for test assertions.
type Fake struct {
	Events []dial.Event
}

// Deliver records the event.
func (f *Fake) Deliver(e dial.Event) {
	f.Events = append(f.Events, e)
}

// Types returns the recorded event types in delivery order.
func (f *Fake) Types() []dial.EventType {
	types := make([]dial.EventType, len(f.Events))
	for i, e := range f.Events {
		types[i] = e.Type
	}
	return types
}

// Reset clears recorded events.
func (f *Fake) Reset() {
	f.Events = nil
}
