package serial

import "errors"

var (
	ErrNoDevice       = errors.New("no serial device")
	ErrInvalidBaud    = errors.New("invalid baud rate")
	ErrInvalidTimeout = errors.New("invalid read timeout")
)
