//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// sampleChanCap absorbs bursts of bounce edges between reads of the decode
// goroutine. A bouncy pulse train at 10 Hz stays far below this.
const sampleChanCap = 64

// RealWatcher watches the dial lines on actual hardware using Linux GPIO
// character device edge events.
type RealWatcher struct {
	chip      *gpiocdev.Chip
	pulseLine *gpiocdev.Line
	shuntLine *gpiocdev.Line
	samples   chan dial.Sample

	mu     sync.Mutex
	closed bool
}

// NewRealWatcher requests both dial pins as inputs with pull-ups (the
// switches are open-collector to ground) and subscribes to both edges.
func NewRealWatcher(pinPulse, pinShunt int) (*RealWatcher, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	w := &RealWatcher{
		chip:    chip,
		samples: make(chan dial.Sample, sampleChanCap),
	}

	pulseLine, err := chip.RequestLine(pinPulse,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(w.handler(dial.LinePulse)))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request pulse pin %d: %w", pinPulse, err)
	}
	w.pulseLine = pulseLine

	shuntLine, err := chip.RequestLine(pinShunt,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(w.handler(dial.LineShunt)))
	if err != nil {
		pulseLine.Close()
		chip.Close()
		return nil, fmt.Errorf("request shunt pin %d: %w", pinShunt, err)
	}
	w.shuntLine = shuntLine

	return w, nil
}

// handler returns the edge callback for one line. The callback runs on the
// gpiocdev event goroutine and must not block: when the sample channel is
// full the sample is dropped, which the conditioner's resampling recovers
// from on the next tick.
//
// The kernel event timestamp uses a different clock than the tick source, so
// samples are stamped with time.Now(); delivery jitter is far below the
// debounce windows.
func (w *RealWatcher) handler(line dial.Line) func(gpiocdev.LineEvent) {
	return func(evt gpiocdev.LineEvent) {
		level := dial.Low
		if evt.Type == gpiocdev.LineEventRisingEdge {
			level = dial.High
		}
		s := dial.Sample{Line: line, Level: level, Time: time.Now()}

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		select {
		case w.samples <- s:
		default:
		}
	}
}

// Samples returns the raw sample channel.
func (w *RealWatcher) Samples() <-chan dial.Sample {
	return w.samples
}

// Levels reads the current raw level of both lines.
func (w *RealWatcher) Levels() (dial.Level, dial.Level, error) {
	pulseRaw, err := w.pulseLine.Value()
	if err != nil {
		return dial.Low, dial.Low, fmt.Errorf("read pulse pin: %w", err)
	}
	shuntRaw, err := w.shuntLine.Value()
	if err != nil {
		return dial.Low, dial.Low, fmt.Errorf("read shunt pin: %w", err)
	}
	return rawLevel(pulseRaw), rawLevel(shuntRaw), nil
}

func rawLevel(v int) dial.Level {
	if v == 0 {
		return dial.Low
	}
	return dial.High
}

// Close releases the lines and the chip and closes the sample channel.
func (w *RealWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.samples)
	w.mu.Unlock()

	var errs []error
	if w.pulseLine != nil {
		if err := w.pulseLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close pulse line: %w", err))
		}
	}
	if w.shuntLine != nil {
		if err := w.shuntLine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close shunt line: %w", err))
		}
	}
	if w.chip != nil {
		if err := w.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
