// internal/packet/codec.go
package packet

import (
	"errors"
	"fmt"
	"io"

	"github.com/tamzrod/basedctl/internal/fault"
)

var (
	ErrPayloadTooLarge = errors.New("packet: payload too large")
	ErrShortFrame      = errors.New("packet: short frame")
	ErrLengthMismatch  = errors.New("packet: length field does not match frame size")
	ErrChecksum        = errors.New("packet: checksum mismatch")
)

// Codec turns frames into wire bytes and back.
// The zero value uses the sum8 checksum and the full one-byte payload range.
type Codec struct {
	Checksum   Checksum
	MaxPayload int
}

func (c Codec) checksum() Checksum {
	if c.Checksum == nil {
		return ChecksumSum8{}
	}
	return c.Checksum
}

// Verifies reports whether Decode can detect a corrupted frame.
func (c Codec) Verifies() bool {
	return c.checksum().Size() > 0
}

func (c Codec) maxPayload() int {
	if c.MaxPayload <= 0 || c.MaxPayload > MaxPayload {
		return MaxPayload
	}
	return c.MaxPayload
}

// Encode builds the wire bytes for f.
// Oversized payloads are rejected here, before anything reaches a transport.
func (c Codec) Encode(f Frame) ([]byte, error) {
	if len(f.Payload) > c.maxPayload() {
		return nil, fault.Wrap(fault.KindUsage, "encode "+f.Opcode.String(),
			fmt.Errorf("%w: %d bytes, maximum is %d", ErrPayloadTooLarge, len(f.Payload), c.maxPayload()))
	}

	cs := c.checksum()
	buf := make([]byte, 0, HeaderLen+len(f.Payload)+cs.Size())
	buf = append(buf, f.Opcode.Block, f.Opcode.Function, byte(f.Operator), byte(len(f.Payload)))
	buf = append(buf, f.Payload...)
	buf = append(buf, cs.Sum(buf)...)
	return buf, nil
}

// Seal appends the checksum trailer to an already laid-out header+payload.
// Used by raw packet mode, where the caller supplies the header bytes too.
func (c Codec) Seal(raw []byte) ([]byte, error) {
	if len(raw) > HeaderLen+c.maxPayload() {
		return nil, fault.Wrap(fault.KindUsage, "encode raw",
			fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(raw)))
	}
	out := make([]byte, 0, len(raw)+c.checksum().Size())
	out = append(out, raw...)
	return append(out, c.checksum().Sum(raw)...), nil
}

// Decode validates a complete frame and only then exposes its fields.
//
// Validation order: minimum size, declared length vs actual size, payload
// bound, checksum.
func (c Codec) Decode(b []byte) (Frame, error) {
	cs := c.checksum()
	minLen := HeaderLen + cs.Size()

	if len(b) < minLen {
		return Frame{}, fault.Wrap(fault.KindProtocol, "decode",
			fmt.Errorf("%w: got %d bytes, minimum is %d", ErrShortFrame, len(b), minLen))
	}

	n := int(b[3])
	if len(b) != minLen+n {
		return Frame{}, fault.Wrap(fault.KindProtocol, "decode",
			fmt.Errorf("%w: length=%d frame=%d bytes", ErrLengthMismatch, n, len(b)))
	}
	if n > c.maxPayload() {
		return Frame{}, fault.Wrap(fault.KindProtocol, "decode",
			fmt.Errorf("%w: %d bytes, maximum is %d", ErrPayloadTooLarge, n, c.maxPayload()))
	}

	body := b[:HeaderLen+n]
	if cs.Size() > 0 {
		want := cs.Sum(body)
		got := b[HeaderLen+n:]
		for i := range want {
			if want[i] != got[i] {
				return Frame{}, fault.Wrap(fault.KindProtocol, "decode",
					fmt.Errorf("%w: got % x, computed % x", ErrChecksum, got, want))
			}
		}
	}

	payload := make([]byte, n)
	copy(payload, b[HeaderLen:HeaderLen+n])

	return Frame{
		Opcode:   Opcode{Block: b[0], Function: b[1]},
		Operator: Operator(b[2]),
		Payload:  payload,
	}, nil
}

// ReadFrame reads exactly one frame's bytes from a stream: the header, then
// as many payload and trailer bytes as the header announces.
// Reader errors are returned untouched so the caller can tell timeouts apart.
func (c Codec) ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	n := int(hdr[3])
	if n > c.maxPayload() {
		return nil, fault.Wrap(fault.KindProtocol, "read frame",
			fmt.Errorf("%w: header announces %d bytes, maximum is %d", ErrPayloadTooLarge, n, c.maxPayload()))
	}

	buf := make([]byte, HeaderLen+n+c.checksum().Size())
	copy(buf, hdr[:])
	if _, err := io.ReadFull(r, buf[HeaderLen:]); err != nil {
		return nil, err
	}
	return buf, nil
}
