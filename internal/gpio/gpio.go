// Package gpio provides rotary dial line watching with hardware abstraction.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/Schop/rotary-dial-test/internal/dial"

// Watcher delivers raw, timestamped samples of the two dial lines. Samples
// are not debounced; that is the conditioner's job.
type Watcher interface {
	// Samples returns the channel of raw line samples. The channel is
	// closed when the watcher is closed.
	Samples() <-chan dial.Sample

	// Levels reads the current raw level of both lines. Used for the
	// startup readout and for print-state mode.
	Levels() (pulse, shunt dial.Level, err error)

	// Close releases hardware resources and closes the sample channel.
	Close() error
}

// Default pin assignments (BCM numbering), matching the reference wiring.
const (
	DefaultPinPulse = 15 // pulse switch (counts dial pulses)
	DefaultPinShunt = 14 // shunt/off-normal switch (active while dialing)
)
