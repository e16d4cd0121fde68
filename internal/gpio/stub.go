//go:build !linux

package gpio

import (
	"errors"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// RealWatcher is not available on non-Linux platforms.
type RealWatcher struct{}

// NewRealWatcher returns an error on non-Linux platforms.
func NewRealWatcher(pinPulse, pinShunt int) (*RealWatcher, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Samples is not implemented on non-Linux platforms.
func (w *RealWatcher) Samples() <-chan dial.Sample {
	return nil
}

// Levels is not implemented on non-Linux platforms.
func (w *RealWatcher) Levels() (dial.Level, dial.Level, error) {
	return dial.Low, dial.Low, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (w *RealWatcher) Close() error {
	return nil
}
