// internal/config/validate.go
package config

import (
	"fmt"
	"sort"
	"strings"
)

var (
	transports = []string{"socket", "tty"}
	checksums  = []string{"none", "sum8", "xor8"}
	logLevels  = []string{"trace", "debug", "info", "warn", "error", "disabled"}
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values mean "use the default" and are always accepted.
func Validate(cfg *Config) error {
	if cfg == nil {
		return nil
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	d := cfg.Device
	if d.Transport != "" && !oneOf(d.Transport, transports) {
		return fmt.Errorf("device.transport %q: want one of %s", d.Transport, strings.Join(transports, ", "))
	}
	// RFCOMM server channels are 1..30
	if d.Channel < 0 || d.Channel > 30 {
		return fmt.Errorf("device.channel %d out of range 1..30", d.Channel)
	}
	if d.BaudRate < 0 {
		return fmt.Errorf("device.baud_rate must be >= 0")
	}
	if d.SendTimeoutMs < 0 || d.ReceiveTimeoutMs < 0 {
		return fmt.Errorf("device timeouts must be >= 0")
	}

	// ------------------------------------------------------------
	// PROTOCOL
	// ------------------------------------------------------------

	p := cfg.Protocol
	if p.Checksum != "" && !oneOf(p.Checksum, checksums) {
		return fmt.Errorf("protocol.checksum %q: want one of %s", p.Checksum, strings.Join(checksums, ", "))
	}
	if p.MaxPayload < 0 || p.MaxPayload > 255 {
		return fmt.Errorf("protocol.max_payload %d out of range 1..255", p.MaxPayload)
	}
	if len(p.Handshake) > 0 {
		if err := validOpcode("protocol.handshake", p.Handshake); err != nil {
			return err
		}
	}

	// sorted for a deterministic first error
	names := make([]string, 0, len(p.Opcodes))
	for name := range p.Opcodes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("protocol.opcodes: empty command name")
		}
		if err := validOpcode("protocol.opcodes."+name, p.Opcodes[name]); err != nil {
			return err
		}
	}

	// ------------------------------------------------------------
	// CAPABILITIES
	// ------------------------------------------------------------

	for _, id := range cfg.Capabilities.NoiseCancelling {
		if id < 0 || id > 0xFFFF {
			return fmt.Errorf("capabilities.noise_cancelling: model id %d out of range", id)
		}
	}

	// ------------------------------------------------------------
	// POLL / BLUEZ / LOG
	// ------------------------------------------------------------

	if cfg.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll.interval_ms must be >= 0")
	}
	if cfg.Poll.MaxAttempts < 0 {
		return fmt.Errorf("poll.max_attempts must be >= 0 (0 = unbounded)")
	}
	if strings.ContainsAny(cfg.Bluez.Adapter, "/ ") {
		return fmt.Errorf("bluez.adapter %q: want an adapter name such as hci0", cfg.Bluez.Adapter)
	}
	if cfg.Log.Level != "" && !oneOf(strings.ToLower(cfg.Log.Level), logLevels) {
		return fmt.Errorf("log.level %q: want one of %s", cfg.Log.Level, strings.Join(logLevels, ", "))
	}

	return nil
}

func validOpcode(field string, v []int) error {
	if len(v) != 2 {
		return fmt.Errorf("%s: want [block, function], got %d values", field, len(v))
	}
	for _, b := range v {
		if b < 0 || b > 0xFF {
			return fmt.Errorf("%s: byte %d out of range", field, b)
		}
	}
	return nil
}

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}
