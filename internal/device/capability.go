// internal/device/capability.go
package device

// Model ids of headsets known to carry noise cancelling.
const (
	ModelQC35   uint16 = 0x4014
	ModelQC35II uint16 = 0x4020
)

// Capabilities is the per-model feature table.
type Capabilities struct {
	noiseCancelling map[uint16]bool
}

func DefaultCapabilities() Capabilities {
	return NewCapabilities([]uint16{ModelQC35, ModelQC35II})
}

// NewCapabilities builds a table from the model ids that support noise cancelling.
func NewCapabilities(noiseCancelling []uint16) Capabilities {
	c := Capabilities{noiseCancelling: make(map[uint16]bool, len(noiseCancelling))}
	for _, id := range noiseCancelling {
		c.noiseCancelling[id] = true
	}
	return c
}

func (c Capabilities) HasNoiseCancelling(model uint16) bool {
	return c.noiseCancelling[model]
}
