// internal/transport/tty.go
package transport

import (
	"errors"
	"fmt"
	"time"

	"github.com/goburrow/serial"
)

// ttyConn adapts a goburrow serial port bound to an RFCOMM tty node.
// The port's read timeout is the receive timeout; tty writes do not block
// long enough to need their own bound.
type ttyConn struct {
	port serial.Port
}

// OpenTTY opens a /dev/rfcommN node. The Bluetooth address is already bound
// to the node by the host, so it is not needed here.
func OpenTTY(path string, baud int, receiveTimeout time.Duration) (Conn, error) {
	if path == "" {
		return nil, errors.New("transport: tty path required")
	}
	if baud <= 0 {
		baud = 115200
	}

	port, err := serial.Open(&serial.Config{
		Address:  path,
		BaudRate: baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  receiveTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &ttyConn{port: port}, nil
}

func (c *ttyConn) Read(p []byte) (int, error) {
	n, err := c.port.Read(p)
	if errors.Is(err, serial.ErrTimeout) {
		return n, ErrTimeout
	}
	return n, err
}

func (c *ttyConn) Write(p []byte) (int, error) {
	return c.port.Write(p)
}

func (c *ttyConn) Close() error {
	return c.port.Close()
}
