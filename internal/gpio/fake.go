package gpio

import "github.com/Schop/rotary-dial-test/internal/dial"

// FakeWatcher is a test double that lets tests feed scripted line samples.
type FakeWatcher struct {
	// Pulse and Shunt are the levels returned by Levels().
	Pulse dial.Level
	Shunt dial.Level

	// LevelsError, if set, will be returned by Levels().
	LevelsError error

	// Closed tracks if Close was called.
	Closed bool

	ch chan dial.Sample
}

// NewFakeWatcher creates a FakeWatcher with both lines at rest (High).
func NewFakeWatcher() *FakeWatcher {
	return &FakeWatcher{
		Pulse: dial.High,
		Shunt: dial.High,
		ch:    make(chan dial.Sample, 64),
	}
}

// Emit queues a raw sample for the consumer and tracks it as the current
// raw level for Levels().
func (f *FakeWatcher) Emit(s dial.Sample) {
	if s.Line == dial.LineShunt {
		f.Shunt = s.Level
	} else {
		f.Pulse = s.Level
	}
	f.ch <- s
}

// Samples returns the scripted sample channel.
func (f *FakeWatcher) Samples() <-chan dial.Sample {
	return f.ch
}

// Levels returns the configured levels.
func (f *FakeWatcher) Levels() (dial.Level, dial.Level, error) {
	if f.LevelsError != nil {
		return dial.Low, dial.Low, f.LevelsError
	}
	return f.Pulse, f.Shunt, nil
}

// Close marks the watcher as closed and closes the sample channel.
func (f *FakeWatcher) Close() error {
	if !f.Closed {
		f.Closed = true
		close(f.ch)
	}
	return nil
}
