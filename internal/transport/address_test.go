// internal/transport/address_test.go
package transport

import (
	"testing"

	"github.com/tamzrod/basedctl/internal/fault"
)

func TestParseAddress(t *testing.T) {
	a, err := ParseAddress("AA:BB:CC:DD:EE:FF")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Address{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	if a != want {
		t.Fatalf("got %v want %v", a, want)
	}
	if a.String() != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("string: %q", a.String())
	}

	lower, err := ParseAddress("4c:87:5d:0a:1b:2c")
	if err != nil {
		t.Fatalf("parse lower: %v", err)
	}
	if lower.String() != "4C:87:5D:0A:1B:2C" {
		t.Fatalf("string: %q", lower.String())
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"AA:BB:CC:DD:EE",
		"AA:BB:CC:DD:EE:FF:00",
		"AA:BB:CC:DD:EE:GG",
		"A:BB:CC:DD:EE:FF0",
		"AABBCCDDEEFF",
	} {
		if _, err := ParseAddress(in); !fault.IsKind(err, fault.KindUsage) {
			t.Errorf("%q: expected usage error, got %v", in, err)
		}
	}
}

func TestAddressFromBytes(t *testing.T) {
	a, err := AddressFromBytes([]byte{1, 2, 3, 4, 5, 6, 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != (Address{1, 2, 3, 4, 5, 6}) {
		t.Fatalf("got %v", a)
	}
	if _, err := AddressFromBytes([]byte{1, 2}); !fault.IsKind(err, fault.KindProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}
