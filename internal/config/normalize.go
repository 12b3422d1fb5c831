// internal/config/normalize.go
package config

import "strings"

// Built-in defaults. They match what the headsets were designed around.
const (
	DefaultTransport        = "socket"
	DefaultChannel          = 8
	DefaultTTYPath          = "/dev/rfcomm0"
	DefaultBaudRate         = 115200
	DefaultSendTimeoutMs    = 5000
	DefaultReceiveTimeoutMs = 1000
	DefaultChecksum         = "sum8"
	DefaultMaxPayload       = 255
	DefaultPollIntervalMs   = 4000
	DefaultAdapter          = "hci0"
	DefaultLogLevel         = "warn"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.Device
	if d.Transport == "" {
		d.Transport = DefaultTransport
	}
	if d.Channel == 0 {
		d.Channel = DefaultChannel
	}
	if d.TTYPath == "" {
		d.TTYPath = DefaultTTYPath
	}
	if d.BaudRate == 0 {
		d.BaudRate = DefaultBaudRate
	}
	if d.SendTimeoutMs == 0 {
		d.SendTimeoutMs = DefaultSendTimeoutMs
	}
	if d.ReceiveTimeoutMs == 0 {
		d.ReceiveTimeoutMs = DefaultReceiveTimeoutMs
	}

	p := &cfg.Protocol
	if p.Checksum == "" {
		p.Checksum = DefaultChecksum
	}
	if p.MaxPayload == 0 {
		p.MaxPayload = DefaultMaxPayload
	}
	if len(p.Handshake) == 0 {
		p.Handshake = []int{0x00, 0x01}
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultPollIntervalMs
	}
	// max_attempts stays 0: unbounded unless asked otherwise

	if cfg.Bluez.Adapter == "" {
		cfg.Bluez.Adapter = DefaultAdapter
	}

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
}
