// cmd/basedctl/options.go
package main

import (
	"io"

	"github.com/spf13/pflag"

	"github.com/tamzrod/basedctl/internal/device"
	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/packet"
	"github.com/tamzrod/basedctl/internal/transport"
	"github.com/tamzrod/basedctl/internal/writer"
)

// option is one flag occurrence, in command line order.
type option struct {
	name  string
	value string
}

// cmdline is the parsed command line before anything is validated.
type cmdline struct {
	help       bool
	configPath string
	options    []option
	positional []string
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(programName, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	fs.SortFlags = false

	fs.BoolP("help", "h", false, "print the help message")
	fs.BoolP("info", "i", false, "print all the device information")
	fs.BoolP("device-status", "d", false, "print the device status")
	fs.BoolP("firmware-version", "f", false, "print the firmware version")
	fs.BoolP("serial-number", "s", false, "print the serial number")
	fs.BoolP("battery-level", "b", false, "print the battery level")
	fs.BoolP("paired-devices", "a", false, "print the paired devices")
	fs.Bool("device-id", false, "print the device id and index")

	fs.StringP("name", "n", "", "change the device name")
	fs.StringP("auto-off", "o", "", "change the auto-off time")
	fs.StringP("noise-cancelling", "c", "", "change the noise cancelling level")
	fs.StringP("prompt-language", "l", "", "change the voice prompt language")
	fs.StringP("voice-prompts", "v", "", "switch voice prompts on or off")
	fs.StringP("pairing", "p", "", "switch pairing on or off")
	fs.StringP("self-voice", "e", "", "change the self voice level")
	fs.String("connect-device", "", "connect the device at address")
	fs.String("disconnect-device", "", "disconnect the device at address")
	fs.String("remove-device", "", "remove the device at address")
	fs.String("send-packet", "", "send a raw hex packet")
	fs.String("config", "", "profile path")

	_ = fs.MarkHidden("send-packet")
	return fs
}

// parseArgs records every flag occurrence in order. ParseAll hands us each
// one as it is seen, so repeated and interleaved options keep their order.
func parseArgs(args []string) (cmdline, error) {
	var cl cmdline
	fs := newFlagSet()

	err := fs.ParseAll(args, func(f *pflag.Flag, value string) error {
		switch f.Name {
		case "help":
			cl.help = true
		case "config":
			cl.configPath = value
		default:
			cl.options = append(cl.options, option{name: f.Name, value: value})
		}
		return nil
	})
	if err != nil {
		return cl, fault.Wrap(fault.KindUsage, "arguments", err)
	}
	cl.positional = fs.Args()
	return cl, nil
}

// targetAddress checks the single positional headset address.
func targetAddress(positional []string) (transport.Address, error) {
	switch len(positional) {
	case 0:
		return transport.Address{}, fault.Usagef("arguments", "An address argument must be given.")
	case 1:
		return transport.ParseAddress(positional[0])
	default:
		return transport.Address{}, fault.Usagef("arguments", "Only one address argument may be given.")
	}
}

// ---- actions ----

// action is one validated option, ready to run against the headset.
type action struct {
	name string
	run  func(inv *invocation) error
}

// buildActions validates every option value up front so a bad value is
// rejected before the transport is touched.
func buildActions(opts []option) ([]action, error) {
	out := make([]action, 0, len(opts))
	for _, o := range opts {
		a, err := buildAction(o)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func buildAction(o option) (action, error) {
	a := action{name: o.name}

	switch o.name {
	case "info":
		a.run = (*invocation).info
	case "device-status":
		a.run = query((*device.Client).DeviceStatus, (*writer.Console).Status)
	case "firmware-version":
		a.run = query((*device.Client).FirmwareVersion, (*writer.Console).Firmware)
	case "serial-number":
		a.run = query((*device.Client).SerialNumber, (*writer.Console).Serial)
	case "battery-level":
		a.run = query((*device.Client).BatteryLevel, (*writer.Console).Battery)
	case "paired-devices":
		a.run = query((*device.Client).PairedDevices, (*writer.Console).Paired)
	case "device-id":
		a.run = query((*device.Client).DeviceID, (*writer.Console).Identity)

	case "name":
		if err := device.ValidateName(o.value); err != nil {
			return a, err
		}
		name := o.value
		a.run = set(func(c *device.Client) error { return c.SetName(name) })

	case "auto-off":
		v, err := device.ParseAutoOff(o.value)
		if err != nil {
			return a, err
		}
		a.run = set(func(c *device.Client) error { return c.SetAutoOff(v) })

	case "noise-cancelling":
		v, err := device.ParseNoiseCancelling(o.value)
		if err != nil {
			return a, err
		}
		a.run = set(func(c *device.Client) error { return c.SetNoiseCancelling(v) })

	case "prompt-language":
		v, err := device.ParsePromptLanguage(o.value)
		if err != nil {
			return a, err
		}
		a.run = set(func(c *device.Client) error { return c.SetPromptLanguage(v) })

	case "voice-prompts":
		on, err := device.ParseSwitch("voice prompts", o.value)
		if err != nil {
			return a, err
		}
		a.run = set(func(c *device.Client) error { return c.SetVoicePrompts(on) })

	case "pairing":
		v, err := device.ParsePairing(o.value)
		if err != nil {
			return a, err
		}
		a.run = set(func(c *device.Client) error { return c.SetPairing(v) })

	case "self-voice":
		v, err := device.ParseSelfVoice(o.value)
		if err != nil {
			return a, err
		}
		a.run = set(func(c *device.Client) error { return c.SetSelfVoice(v) })

	case "connect-device", "disconnect-device", "remove-device":
		addr, err := transport.ParseAddress(o.value)
		if err != nil {
			return a, err
		}
		manage := map[string]func(*device.Client, transport.Address) error{
			"connect-device":    (*device.Client).ConnectDevice,
			"disconnect-device": (*device.Client).DisconnectDevice,
			"remove-device":     (*device.Client).RemoveDevice,
		}[o.name]
		a.run = set(func(c *device.Client) error { return manage(c, addr) })

	case "send-packet":
		raw, err := packet.ParseHex(o.value)
		if err != nil {
			return a, err
		}
		a.run = func(inv *invocation) error { return inv.sendPacket(raw) }

	default:
		return a, fault.Usagef("arguments", "unhandled option --%s", o.name)
	}
	return a, nil
}

// query runs a read-only command and prints its result.
func query[T any](get func(*device.Client) (T, error), show func(*writer.Console, T) error) func(*invocation) error {
	return func(inv *invocation) error {
		c, err := inv.client()
		if err != nil {
			return err
		}
		v, err := get(c)
		if err != nil {
			return err
		}
		return show(inv.console, v)
	}
}

// set runs a command whose only output is success or failure.
func set(fn func(*device.Client) error) func(*invocation) error {
	return func(inv *invocation) error {
		c, err := inv.client()
		if err != nil {
			return err
		}
		return fn(c)
	}
}
