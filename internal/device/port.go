// Package device speaks the command/response protocol of a Movesense-style
// IMU sensor over a line-oriented serial bridge. Multiple clients can
// subscribe to the streamed sample lines; commands are allowlisted and
// framed before hitting the wire.
package device

import (
	"io"

	"go.bug.st/serial"
)

// Porter is the minimal interface needed from the sensor link.
type Porter interface {
	io.ReadWriter
	io.Closer
}

// OpenPort opens the serial bridge at the given path with the sensor's
// fixed line settings.
func OpenPort(path string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: 115200,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: 1,
	}
	return serial.Open(path, mode)
}
