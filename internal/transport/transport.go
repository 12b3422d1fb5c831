// internal/transport/transport.go
package transport

import (
	"errors"
	"fmt"
	"io"
	"time"
)

// Kind selects how the byte stream to the headset is obtained.
type Kind string

const (
	// KindSocket opens an AF_BLUETOOTH RFCOMM stream socket directly.
	KindSocket Kind = "socket"
	// KindTTY uses a /dev/rfcommN node bound beforehand with `rfcomm bind`.
	KindTTY Kind = "tty"
)

// DefaultChannel is the RFCOMM channel the headsets listen on.
const DefaultChannel = 8

// ErrTimeout is returned by Read/Write when the configured timeout expires.
var ErrTimeout = errors.New("transport: timeout")

// ErrUnsupported is returned where the host has no RFCOMM socket support.
var ErrUnsupported = errors.New("transport: rfcomm sockets not supported on this platform")

// Conn is one connected byte stream. Read and Write are bounded by the
// timeouts given at open time and return ErrTimeout when they expire.
type Conn interface {
	io.ReadWriteCloser
}

// Deadliner is implemented by a Conn whose next reads can be bounded by an
// absolute deadline instead of the per-read receive timeout.
type Deadliner interface {
	SetReadDeadline(t time.Time) error
}

// Config is minimal transport config.
type Config struct {
	Kind           Kind
	Channel        uint8
	TTYPath        string
	BaudRate       int
	SendTimeout    time.Duration
	ReceiveTimeout time.Duration
}

// DefaultConfig mirrors the timeouts the headsets were designed around.
func DefaultConfig() Config {
	return Config{
		Kind:           KindSocket,
		Channel:        DefaultChannel,
		TTYPath:        "/dev/rfcomm0",
		BaudRate:       115200,
		SendTimeout:    5 * time.Second,
		ReceiveTimeout: time.Second,
	}
}

// Dialer opens a Conn to addr. Open is the production Dialer; tests substitute fakes.
type Dialer func(cfg Config, addr Address) (Conn, error)

// Open dispatches on cfg.Kind. ONE attempt per call.
func Open(cfg Config, addr Address) (Conn, error) {
	switch cfg.Kind {
	case KindSocket, "":
		return DialRFCOMM(addr, cfg.Channel, cfg.SendTimeout, cfg.ReceiveTimeout)
	case KindTTY:
		return OpenTTY(cfg.TTYPath, cfg.BaudRate, cfg.ReceiveTimeout)
	default:
		return nil, fmt.Errorf("transport: unknown kind %q", cfg.Kind)
	}
}
