// internal/packet/hex.go
package packet

import (
	"encoding/hex"
	"strings"

	"github.com/tamzrod/basedctl/internal/fault"
)

// ParseHex decodes raw packet text made of two-hex-digit groups.
// Groups may be run together ("00010100") or separated by spaces, colons or
// commas ("00 01 01 00"). Every group must be exactly two hex digits.
func ParseHex(text string) ([]byte, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == ':' || r == ','
	})
	if len(fields) == 0 {
		return nil, fault.Usagef("send packet", "empty packet")
	}

	var out []byte
	for _, f := range fields {
		if len(f)%2 != 0 {
			return nil, fault.Usagef("send packet", "%q: odd number of hex digits", f)
		}
		for i := 0; i < len(f); i += 2 {
			b, err := hex.DecodeString(f[i : i+2])
			if err != nil {
				return nil, fault.Usagef("send packet", "%q is not a hex byte", f[i:i+2])
			}
			out = append(out, b[0])
		}
	}
	return out, nil
}

// FormatHex renders bytes the way raw packet mode prints them.
func FormatHex(b []byte) string {
	var sb strings.Builder
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(hex.EncodeToString([]byte{v}))
	}
	return sb.String()
}
