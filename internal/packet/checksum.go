// internal/packet/checksum.go
package packet

import (
	"fmt"
	"strings"
)

// Checksum is the integrity trailer appended after the payload.
// Sum is computed over header+payload and returns exactly Size() bytes.
type Checksum interface {
	Name() string
	Size() int
	Sum(data []byte) []byte
}

// ChecksumNone sends and expects no trailer. Decode cannot detect corruption
// with it, so it is only used when a profile asks for it by name.
type ChecksumNone struct{}

func (ChecksumNone) Name() string        { return "none" }
func (ChecksumNone) Size() int           { return 0 }
func (ChecksumNone) Sum(_ []byte) []byte { return nil }

// ChecksumSum8 is the two's complement of the byte sum, so that the sum of
// the covered bytes plus the trailer is zero mod 256.
type ChecksumSum8 struct{}

func (ChecksumSum8) Name() string { return "sum8" }
func (ChecksumSum8) Size() int    { return 1 }

func (ChecksumSum8) Sum(data []byte) []byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return []byte{^sum + 1}
}

// ChecksumXOR8 is the XOR of every covered byte.
type ChecksumXOR8 struct{}

func (ChecksumXOR8) Name() string { return "xor8" }
func (ChecksumXOR8) Size() int    { return 1 }

func (ChecksumXOR8) Sum(data []byte) []byte {
	var x byte
	for _, b := range data {
		x ^= b
	}
	return []byte{x}
}

// ChecksumByName resolves a config token to an algorithm. An empty name is
// the default, sum8.
func ChecksumByName(name string) (Checksum, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none":
		return ChecksumNone{}, nil
	case "", "sum8":
		return ChecksumSum8{}, nil
	case "xor8":
		return ChecksumXOR8{}, nil
	default:
		return nil, fmt.Errorf("unknown checksum %q (want none, sum8 or xor8)", name)
	}
}
