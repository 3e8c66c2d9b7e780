package serial

import (
	"io"
)

// Port is a host serial connection to the board's UART0.
// Implementations:
// - Native serial (using github.com/tarm/serial)
// - Pipe ports in tests
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate; must match the rate the firmware programmed into UART0
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultBaud is the UART0 rate used by the firmware when none is configured.
const DefaultBaud = 115200

// DefaultConfig returns the configuration for a board running the default
// firmware console.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        DefaultBaud,
		ReadTimeout: 100, // 100ms read timeout
	}
}

// Validate checks that the configuration can be opened.
func (c *Config) Validate() error {
	if c.Device == "" {
		return ErrNoDevice
	}
	if c.Baud <= 0 {
		return ErrInvalidBaud
	}
	if c.ReadTimeout < 0 {
		return ErrInvalidTimeout
	}
	return nil
}
