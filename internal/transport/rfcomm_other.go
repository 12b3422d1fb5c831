// internal/transport/rfcomm_other.go

//go:build !linux

package transport

import "time"

// DialRFCOMM needs AF_BLUETOOTH sockets; use the tty transport elsewhere.
func DialRFCOMM(_ Address, _ uint8, _, _ time.Duration) (Conn, error) {
	return nil, ErrUnsupported
}
