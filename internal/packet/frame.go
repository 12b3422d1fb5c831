// internal/packet/frame.go
package packet

import "fmt"

// HeaderLen is the fixed frame header:
//
//	[BLOCK][FUNCTION][OPERATOR][LENGTH]
const HeaderLen = 4

// MaxPayload is the largest payload the one-byte length field can describe.
const MaxPayload = 0xFF

// Opcode selects the device operation a frame addresses.
type Opcode struct {
	Block    byte
	Function byte
}

func (o Opcode) String() string {
	return fmt.Sprintf("0x%02x/0x%02x", o.Block, o.Function)
}

// Operator tells the device (or us) what the frame is doing with the opcode.
type Operator byte

const (
	OpGet        Operator = 0x01
	OpSet        Operator = 0x02
	OpStatus     Operator = 0x03
	OpError      Operator = 0x04
	OpStart      Operator = 0x05
	OpResult     Operator = 0x06
	OpProcessing Operator = 0x07
)

func (o Operator) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpSet:
		return "set"
	case OpStatus:
		return "status"
	case OpError:
		return "error"
	case OpStart:
		return "start"
	case OpResult:
		return "result"
	case OpProcessing:
		return "processing"
	default:
		return fmt.Sprintf("operator(0x%02x)", byte(o))
	}
}

// Frame is one decoded wire message. Payload never includes the checksum trailer.
type Frame struct {
	Opcode   Opcode
	Operator Operator
	Payload  []byte
}

func (f Frame) String() string {
	return fmt.Sprintf("%s %s len=%d", f.Opcode, f.Operator, len(f.Payload))
}
