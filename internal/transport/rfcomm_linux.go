// internal/transport/rfcomm_linux.go

//go:build linux

package transport

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// rfcommConn is a blocking RFCOMM stream socket. Timeouts are enforced by the
// kernel through SO_SNDTIMEO / SO_RCVTIMEO, which also bound connect().
type rfcommConn struct {
	mu sync.Mutex
	fd int
}

// DialRFCOMM allocates the socket, applies both timeouts, then connects.
// Every failure releases the socket before returning.
func DialRFCOMM(addr Address, channel uint8, sendTimeout, receiveTimeout time.Duration) (Conn, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("create rfcomm socket: %w", err)
	}

	if err := setTimeout(fd, unix.SO_SNDTIMEO, sendTimeout); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("could not set socket send timeout: %w", err)
	}
	if err := setTimeout(fd, unix.SO_RCVTIMEO, receiveTimeout); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("could not set socket receive timeout: %w", err)
	}

	sa := &unix.SockaddrRFCOMM{Addr: addr.kernelOrder(), Channel: channel}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		if isTimeout(err) {
			return nil, fmt.Errorf("connect %s channel %d: %w", addr, channel, ErrTimeout)
		}
		return nil, fmt.Errorf("connect %s channel %d: %w", addr, channel, err)
	}

	return &rfcommConn{fd: fd}, nil
}

func setTimeout(fd, opt int, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return unix.SetsockoptTimeval(fd, unix.SOL_SOCKET, opt, &tv)
}

func isTimeout(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.ETIMEDOUT) || errors.Is(err, unix.EINPROGRESS)
}

func (c *rfcommConn) Read(p []byte) (int, error) {
	for {
		n, err := unix.Read(c.fdOrClosed(), p)
		switch {
		case err == nil && n == 0 && len(p) > 0:
			return 0, io.EOF
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EINTR):
			continue
		case isTimeout(err):
			return 0, ErrTimeout
		default:
			return 0, fmt.Errorf("rfcomm read: %w", err)
		}
	}
}

// Write sends all of p. A timeout after a partial write still reports ErrTimeout.
func (c *rfcommConn) Write(p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(c.fdOrClosed(), p[written:])
		if n > 0 {
			written += n
		}
		switch {
		case err == nil:
		case errors.Is(err, unix.EINTR):
		case isTimeout(err):
			return written, ErrTimeout
		default:
			return written, fmt.Errorf("rfcomm write: %w", err)
		}
	}
	return written, nil
}

// SetReadDeadline shrinks SO_RCVTIMEO to the time left until t, so a read
// never blocks past it.
func (c *rfcommConn) SetReadDeadline(t time.Time) error {
	left := time.Until(t)
	if left <= 0 {
		return ErrTimeout
	}
	// a zero timeval would mean no timeout at all
	if left < time.Microsecond {
		left = time.Microsecond
	}
	tv := unix.NsecToTimeval(left.Nanoseconds())
	if err := unix.SetsockoptTimeval(c.fdOrClosed(), unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return fmt.Errorf("rfcomm receive deadline: %w", err)
	}
	return nil
}

func (c *rfcommConn) fdOrClosed() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fd
}

// Close releases the socket. Safe to call more than once.
func (c *rfcommConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fd < 0 {
		return nil
	}
	err := unix.Close(c.fd)
	c.fd = -1
	return err
}
