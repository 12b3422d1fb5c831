// internal/status/snapshot.go
package status

import "time"

// Snapshot represents exactly what the textfile writer is allowed to deliver.
// It contains no logic and no memory of the past.
type Snapshot struct {
	Address string
	At      time.Time

	Health        uint16
	LastErrorCode uint16

	// Attempts per step name, including the failed ones.
	Attempts map[string]int

	// Device facts. Only meaningful when Health is HealthOK.
	ModelID          uint16
	ModelIndex       uint8
	Firmware         string
	Serial           string
	Name             string
	BatteryPercent   int
	NoiseCancelling  int // -1 when the model has none
	PairedDevices    int
	ConnectedDevices int
}
