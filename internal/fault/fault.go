// internal/fault/fault.go
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the caller must react to it.
type Kind uint8

const (
	// KindUsage is an invalid caller value. Nothing was sent.
	KindUsage Kind = iota + 1
	// KindConnection covers socket setup, connect and handshake failures.
	KindConnection
	// KindProtocol is a malformed, short or corrupted frame, or a value
	// the protocol does not allow.
	KindProtocol
	// KindCapability means the device model lacks the feature. Nothing was sent.
	KindCapability
	// KindTimeout means no response arrived within the receive window.
	KindTimeout
	// KindIO is any other transport read/write failure.
	KindIO
	// KindDevice means the device answered with its error operator.
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindUsage:
		return "usage"
	case KindConnection:
		return "connection"
	case KindProtocol:
		return "protocol"
	case KindCapability:
		return "capability"
	case KindTimeout:
		return "timeout"
	case KindIO:
		return "io"
	case KindDevice:
		return "device"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Error is the single error type crossing package boundaries.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Code is the process exit status for this failure.
func (e *Error) Code() uint16 {
	switch e.Kind {
	case KindUsage, KindCapability:
		return 1
	case KindConnection:
		return 2
	case KindProtocol, KindDevice:
		return 3
	case KindTimeout:
		return 4
	default:
		return 5
	}
}

// Wrap attaches a kind and operation name to err. A nil err stays nil.
// An err that already carries a kind keeps it; only Op is refreshed when empty.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *Error
	if errors.As(err, &fe) {
		if fe.Op == "" {
			return &Error{Kind: fe.Kind, Op: op, Err: fe.Err}
		}
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func Usagef(op, format string, args ...any) error {
	return newf(KindUsage, op, format, args...)
}

func Connectionf(op, format string, args ...any) error {
	return newf(KindConnection, op, format, args...)
}

func Protocolf(op, format string, args ...any) error {
	return newf(KindProtocol, op, format, args...)
}

func Capabilityf(op, format string, args ...any) error {
	return newf(KindCapability, op, format, args...)
}

// KindOf returns the kind carried by err, or 0 when err is nil or untyped.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Transient reports whether a retry on a fresh session could succeed.
func Transient(err error) bool {
	switch KindOf(err) {
	case KindTimeout, KindConnection, KindIO:
		return true
	default:
		return false
	}
}

// DeviceError carries the status byte the device returned with its error operator.
type DeviceError struct {
	Block    byte
	Function byte
	Status   byte
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device rejected request 0x%02x/0x%02x (status 0x%02x)", e.Block, e.Function, e.Status)
}
