// internal/config/config.go
package config

type Config struct {
	Device       DeviceConfig       `yaml:"device" toml:"device"`
	Protocol     ProtocolConfig     `yaml:"protocol" toml:"protocol"`
	Capabilities CapabilitiesConfig `yaml:"capabilities" toml:"capabilities"`
	Poll         PollConfig         `yaml:"poll" toml:"poll"`
	Bluez        BluezConfig        `yaml:"bluez" toml:"bluez"`
	Log          LogConfig          `yaml:"log" toml:"log"`
	Metrics      MetricsConfig      `yaml:"metrics" toml:"metrics"`
}

// ---- DEVICE (transport) ----

type DeviceConfig struct {
	Transport        string `yaml:"transport" toml:"transport"` // socket | tty
	Channel          int    `yaml:"channel" toml:"channel"`
	TTYPath          string `yaml:"tty_path" toml:"tty_path"`
	BaudRate         int    `yaml:"baud_rate" toml:"baud_rate"`
	SendTimeoutMs    int    `yaml:"send_timeout_ms" toml:"send_timeout_ms"`
	ReceiveTimeoutMs int    `yaml:"receive_timeout_ms" toml:"receive_timeout_ms"`
}

// ---- PROTOCOL ----

type ProtocolConfig struct {
	Checksum   string `yaml:"checksum" toml:"checksum"` // sum8 (default) | xor8 | none
	MaxPayload int    `yaml:"max_payload" toml:"max_payload"`

	// Opcodes are [block, function] pairs.
	Handshake []int            `yaml:"handshake" toml:"handshake"`
	Opcodes   map[string][]int `yaml:"opcodes" toml:"opcodes"` // command name -> opcode override
}

// ---- CAPABILITIES ----

type CapabilitiesConfig struct {
	// NoiseCancelling lists the model ids that support noise cancelling.
	// Empty keeps the built-in table.
	NoiseCancelling []int `yaml:"noise_cancelling" toml:"noise_cancelling"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs  int `yaml:"interval_ms" toml:"interval_ms"`
	MaxAttempts int `yaml:"max_attempts" toml:"max_attempts"` // 0 = unbounded
}

// ---- BLUEZ ----

type BluezConfig struct {
	Preflight bool   `yaml:"preflight" toml:"preflight"`
	Adapter   string `yaml:"adapter" toml:"adapter"`
}

// ---- LOG / METRICS ----

type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
}

type MetricsConfig struct {
	// Textfile is written after an info run when set.
	Textfile string `yaml:"textfile" toml:"textfile"`
}
