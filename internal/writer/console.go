// internal/writer/console.go
package writer

import (
	"fmt"
	"io"
	"strings"

	"github.com/tamzrod/basedctl/internal/device"
	"github.com/tamzrod/basedctl/internal/poller"
)

// Console prints results as plain text, one block per query.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Write prints a complete info run in query order. A failed run prints nothing.
func (c *Console) Write(res poller.PollResult) error {
	if res.Err != nil {
		return nil
	}
	info := res.Info

	var b strings.Builder
	formatIdentity(&b, info.Identity)
	formatSerial(&b, info.Serial)
	formatFirmware(&b, info.Firmware)
	formatBattery(&b, info.Battery)
	formatStatus(&b, info.Status)
	formatPaired(&b, info.Paired)
	return c.flush(&b)
}

func (c *Console) Identity(id device.Identity) error {
	var b strings.Builder
	formatIdentity(&b, id)
	return c.flush(&b)
}

func (c *Console) Serial(s string) error {
	var b strings.Builder
	formatSerial(&b, s)
	return c.flush(&b)
}

func (c *Console) Firmware(v string) error {
	var b strings.Builder
	formatFirmware(&b, v)
	return c.flush(&b)
}

func (c *Console) Battery(level int) error {
	var b strings.Builder
	formatBattery(&b, level)
	return c.flush(&b)
}

func (c *Console) Status(st device.Status) error {
	var b strings.Builder
	formatStatus(&b, st)
	return c.flush(&b)
}

func (c *Console) Paired(pd device.PairedDevices) error {
	var b strings.Builder
	formatPaired(&b, pd)
	return c.flush(&b)
}

// Packet prints a raw response frame as hex bytes.
func (c *Console) Packet(raw []byte) error {
	var b strings.Builder
	b.WriteString("Received package:\n\t")
	for _, v := range raw {
		fmt.Fprintf(&b, "%02x ", v)
	}
	b.WriteString("\n")
	return c.flush(&b)
}

func (c *Console) flush(b *strings.Builder) error {
	_, err := io.WriteString(c.w, b.String())
	return err
}

// ---- formatting ----

func formatIdentity(b *strings.Builder, id device.Identity) {
	fmt.Fprintf(b, "Device ID: 0x%04x | Index: %d\n", id.ModelID, id.Index)
}

func formatSerial(b *strings.Builder, s string) {
	fmt.Fprintf(b, "Serial number: %s\n", s)
}

func formatFirmware(b *strings.Builder, v string) {
	fmt.Fprintf(b, "Firmware version: %s\n", v)
}

func formatBattery(b *strings.Builder, level int) {
	fmt.Fprintf(b, "Battery level: %d\n", level)
}

func formatStatus(b *strings.Builder, st device.Status) {
	b.WriteString("Status:\n")
	fmt.Fprintf(b, "\tName: %s\n", st.Name)
	fmt.Fprintf(b, "\tLanguage: %s\n", st.Prompt.Language)
	fmt.Fprintf(b, "\tVoice Prompts: %s\n", onOff(st.Prompt.VoicePrompts))
	fmt.Fprintf(b, "\tAuto-Off: %s\n", st.AutoOff)
	if st.NoiseCancelling != device.NoiseCancellingUnsupported {
		fmt.Fprintf(b, "\tNoise Cancelling: %s\n", st.NoiseCancelling)
	}
	if st.HasSelfVoice {
		fmt.Fprintf(b, "\tSelf Voice: %s\n", st.SelfVoice)
	}
}

func formatPaired(b *strings.Builder, pd device.PairedDevices) {
	fmt.Fprintf(b, "Paired devices: %d\n", len(pd.Devices))
	fmt.Fprintf(b, "\tConnected: %d\n", pd.Connected)
	for _, d := range pd.Devices {
		fmt.Fprintf(b, "\tDevice: %c | %s | %s\n", marker(d.Status), d.Address, d.Name)
	}
	b.WriteString("\t[!] Indicates the current device.\n")
	b.WriteString("\t[*] Indicates other connected devices.\n")
}

func marker(s device.ConnectionStatus) rune {
	switch s {
	case device.StatusThisDevice:
		return '!'
	case device.StatusConnected:
		return '*'
	default:
		return ' '
	}
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
