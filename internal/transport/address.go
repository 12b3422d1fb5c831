// internal/transport/address.go
package transport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/basedctl/internal/fault"
)

// AddressLen is the size of a Bluetooth device address on the wire.
const AddressLen = 6

// Address is a Bluetooth device address in display order:
// "AA:BB:CC:DD:EE:FF" is {0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}.
// The headsets use the same order inside their payloads.
type Address [AddressLen]byte

// ParseAddress accepts the usual colon separated form.
func ParseAddress(s string) (Address, error) {
	var a Address
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != AddressLen {
		return a, fault.Usagef("address", "invalid bluetooth address %q", s)
	}
	for i, p := range parts {
		if len(p) != 2 {
			return a, fault.Usagef("address", "invalid bluetooth address %q", s)
		}
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return a, fault.Usagef("address", "invalid bluetooth address %q", s)
		}
		a[i] = byte(v)
	}
	return a, nil
}

// AddressFromBytes copies the first AddressLen bytes of b.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) < AddressLen {
		return a, fault.Protocolf("address", "need %d bytes, got %d", AddressLen, len(b))
	}
	copy(a[:], b[:AddressLen])
	return a, nil
}

func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// kernelOrder is the little endian bdaddr layout sockaddr_rc expects.
func (a Address) kernelOrder() [AddressLen]byte {
	var r [AddressLen]byte
	for i := range a {
		r[AddressLen-1-i] = a[i]
	}
	return r
}
