package sink

import (
	"fmt"
	"log"

	"github.com/goburrow/serial"

	"github.com/Schop/rotary-dial-test/internal/dial"
)

// Serial writes the text event format to a serial port, the classic way of
// reporting decoded digits to a host.
type Serial struct {
	port serial.Port
	text *Text
}

// OpenSerial opens the serial device and returns a sink writing to it.
func OpenSerial(device string, baud int) (*Serial, error) {
	port, err := serial.Open(&serial.Config{
		Address:  device,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", device, err)
	}
	return &Serial{
		port: port,
		text: NewText(port),
	}, nil
}

// Deliver renders the event onto the serial port.
func (s *Serial) Deliver(e dial.Event) {
	s.text.Deliver(e)
}

// Close closes the serial port.
func (s *Serial) Close() error {
	if err := s.port.Close(); err != nil {
		log.Printf("serial: close: %v", err)
		return err
	}
	return nil
}
