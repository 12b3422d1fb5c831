// internal/device/catalog.go
package device

import (
	"fmt"
	"sort"

	"github.com/tamzrod/basedctl/internal/packet"
)

// Command names one semantic operation. The names double as the keys of
// protocol.opcodes in the config file.
type Command string

const (
	CmdFirmwareVersion  Command = "firmware_version"
	CmdDeviceID         Command = "device_id"
	CmdSerialNumber     Command = "serial_number"
	CmdBatteryLevel     Command = "battery_level"
	CmdDeviceStatus     Command = "device_status"
	CmdName             Command = "name"
	CmdPromptLanguage   Command = "prompt_language"
	CmdAutoOff          Command = "auto_off"
	CmdNoiseCancelling  Command = "noise_cancelling"
	CmdSelfVoice        Command = "self_voice"
	CmdConnectDevice    Command = "connect_device"
	CmdDisconnectDevice Command = "disconnect_device"
	CmdRemoveDevice     Command = "remove_device"
	CmdPairedDevices    Command = "paired_devices"
	CmdDeviceInfo       Command = "device_info"
	CmdPairing          Command = "pairing"
)

var defaultOpcodes = map[Command]packet.Opcode{
	CmdFirmwareVersion:  {Block: 0x00, Function: 0x05},
	CmdDeviceID:         {Block: 0x00, Function: 0x03},
	CmdSerialNumber:     {Block: 0x00, Function: 0x07},
	CmdBatteryLevel:     {Block: 0x02, Function: 0x02},
	CmdDeviceStatus:     {Block: 0x01, Function: 0x01},
	CmdName:             {Block: 0x01, Function: 0x02},
	CmdPromptLanguage:   {Block: 0x01, Function: 0x03},
	CmdAutoOff:          {Block: 0x01, Function: 0x04},
	CmdNoiseCancelling:  {Block: 0x01, Function: 0x06},
	CmdSelfVoice:        {Block: 0x01, Function: 0x0b},
	CmdConnectDevice:    {Block: 0x04, Function: 0x01},
	CmdDisconnectDevice: {Block: 0x04, Function: 0x02},
	CmdRemoveDevice:     {Block: 0x04, Function: 0x03},
	CmdPairedDevices:    {Block: 0x04, Function: 0x04},
	CmdDeviceInfo:       {Block: 0x04, Function: 0x05},
	CmdPairing:          {Block: 0x04, Function: 0x08},
}

// Catalog maps every command to the opcode the device family uses for it.
type Catalog map[Command]packet.Opcode

// DefaultCatalog returns a fresh copy of the stock opcode table.
func DefaultCatalog() Catalog {
	c := make(Catalog, len(defaultOpcodes))
	for k, v := range defaultOpcodes {
		c[k] = v
	}
	return c
}

// NewCatalog applies overrides on top of the stock table.
// Unknown command names are rejected so a typo in a profile is not silently ignored.
func NewCatalog(overrides map[string]packet.Opcode) (Catalog, error) {
	c := DefaultCatalog()
	for name, op := range overrides {
		cmd := Command(name)
		if _, ok := defaultOpcodes[cmd]; !ok {
			return nil, fmt.Errorf("unknown command %q (known: %v)", name, Commands())
		}
		c[cmd] = op
	}
	return c, nil
}

// Commands lists the known command names in sorted order.
func Commands() []Command {
	out := make([]Command, 0, len(defaultOpcodes))
	for k := range defaultOpcodes {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Opcode falls back to the stock value for commands missing from c.
func (c Catalog) Opcode(cmd Command) packet.Opcode {
	if op, ok := c[cmd]; ok {
		return op
	}
	return defaultOpcodes[cmd]
}

// lookup finds the status setting a function byte belongs to.
func (c Catalog) lookup(op packet.Opcode) (Command, bool) {
	for _, cmd := range statusSettings {
		if c.Opcode(cmd) == op {
			return cmd, true
		}
	}
	return "", false
}

// statusSettings are the commands whose Status frames make up a device status.
var statusSettings = []Command{
	CmdName,
	CmdPromptLanguage,
	CmdAutoOff,
	CmdNoiseCancelling,
	CmdSelfVoice,
}
