// internal/device/directory.go
package device

import (
	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/packet"
	"github.com/tamzrod/basedctl/internal/transport"
)

// MaxPairedDevices is the size of the headset's pairing list.
const MaxPairedDevices = 8

// PairedDevice is one entry of the pairing list.
type PairedDevice struct {
	Address transport.Address
	Name    string
	Status  ConnectionStatus
}

// PairedDevices is a complete pairing list. Connected is always 1 or 2.
type PairedDevices struct {
	Connected int
	Devices   []PairedDevice
}

// Device info layout: [addr(6)][status][2 reserved][name...]
const (
	infoStatusAt = transport.AddressLen
	infoNameAt   = transport.AddressLen + 3
)

// PairedDevices reads the pairing list, then fetches details for each
// address in list order. Any failure discards the whole list.
func (c *Client) PairedDevices() (PairedDevices, error) {
	const op = "paired devices"
	p, err := c.get(op, CmdPairedDevices, nil)
	if err != nil {
		return PairedDevices{}, err
	}
	addrs, connected, err := ParsePairedList(p)
	if err != nil {
		return PairedDevices{}, fault.Wrap(fault.KindProtocol, op, err)
	}

	out := PairedDevices{Connected: connected, Devices: make([]PairedDevice, 0, len(addrs))}
	for _, a := range addrs {
		d, err := c.DeviceInfo(a)
		if err != nil {
			return PairedDevices{}, err
		}
		out.Devices = append(out.Devices, d)
	}
	return out, nil
}

// ParsePairedList decodes [connected-code][addr(6)]* without touching the wire.
func ParsePairedList(p []byte) ([]transport.Address, int, error) {
	const op = "paired devices"
	if len(p) < 1 {
		return nil, 0, fault.Protocolf(op, "empty payload")
	}
	connected, ok := connectedCodes[p[0]]
	if !ok {
		return nil, 0, fault.Protocolf(op, "invalid connected device count 0x%02x", p[0])
	}

	body := p[1:]
	if len(body)%transport.AddressLen != 0 {
		return nil, 0, fault.Protocolf(op, "list length %d is not a multiple of %d", len(body), transport.AddressLen)
	}
	n := len(body) / transport.AddressLen
	if n > MaxPairedDevices {
		return nil, 0, fault.Protocolf(op, "%d devices exceeds max %d", n, MaxPairedDevices)
	}

	addrs := make([]transport.Address, 0, n)
	for i := 0; i < n; i++ {
		a, err := transport.AddressFromBytes(body[i*transport.AddressLen:])
		if err != nil {
			return nil, 0, err
		}
		addrs = append(addrs, a)
	}
	return addrs, connected, nil
}

// DeviceInfo fetches name and connection status of one paired peer.
func (c *Client) DeviceInfo(addr transport.Address) (PairedDevice, error) {
	const op = "device info"
	p, err := c.get(op, CmdDeviceInfo, addr[:])
	if err != nil {
		return PairedDevice{}, err
	}
	d, err := ParseDeviceInfo(p)
	if err != nil {
		return PairedDevice{}, err
	}
	if d.Address != addr {
		return PairedDevice{}, fault.Protocolf(op, "asked for %s, device answered for %s", addr, d.Address)
	}
	return d, nil
}

func ParseDeviceInfo(p []byte) (PairedDevice, error) {
	const op = "device info"
	if len(p) < infoNameAt {
		return PairedDevice{}, fault.Protocolf(op, "payload length %d, want at least %d", len(p), infoNameAt)
	}
	a, err := transport.AddressFromBytes(p)
	if err != nil {
		return PairedDevice{}, err
	}
	st := ConnectionStatus(p[infoStatusAt])
	if _, ok := connectionStatusTokens.name(st); !ok {
		return PairedDevice{}, fault.Protocolf(op, "unknown connection status 0x%02x", p[infoStatusAt])
	}
	return PairedDevice{Address: a, Name: string(p[infoNameAt:]), Status: st}, nil
}

// ---- peer management ----

// connectPrefix precedes the address in a connect request.
const connectPrefix byte = 0x00

func (c *Client) ConnectDevice(addr transport.Address) error {
	payload := append([]byte{connectPrefix}, addr[:]...)
	return c.manage("connect device", CmdConnectDevice, payload)
}

func (c *Client) DisconnectDevice(addr transport.Address) error {
	return c.manage("disconnect device", CmdDisconnectDevice, addr[:])
}

func (c *Client) RemoveDevice(addr transport.Address) error {
	return c.manage("remove device", CmdRemoveDevice, addr[:])
}

// manage starts a peer operation. The device either acknowledges with
// Processing or completes immediately with Result.
func (c *Client) manage(op string, cmd Command, payload []byte) error {
	_, err := c.exchange(op, cmd, packet.OpStart, payload, packet.OpProcessing, packet.OpResult)
	return err
}
