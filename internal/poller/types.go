// internal/poller/types.go
package poller

import (
	"time"

	"github.com/tamzrod/basedctl/internal/device"
)

// Step is one read-only query of the info run.
type Step string

const (
	StepIdentity Step = "identity"
	StepSerial   Step = "serial"
	StepFirmware Step = "firmware"
	StepBattery  Step = "battery"
	StepStatus   Step = "status"
	StepPaired   Step = "paired"
)

// Steps is the fixed order of an info run.
var Steps = []Step{
	StepIdentity,
	StepSerial,
	StepFirmware,
	StepBattery,
	StepStatus,
	StepPaired,
}

// Info is everything a complete run collects.
type Info struct {
	Identity device.Identity
	Serial   string
	Firmware string
	Battery  int
	Status   device.Status
	Paired   device.PairedDevices
}

// StepResult records how one step went.
type StepResult struct {
	Step     Step
	At       time.Time
	Attempts int
	Err      error // last error seen; nil once the step succeeded
}

// PollResult is a snapshot produced by one info run.
type PollResult struct {
	Address string
	At      time.Time

	// RawErrorCode is the exit code class of Err. 0 means success.
	RawErrorCode uint16

	Info  Info
	Steps []StepResult
	Err   error // non-nil means the run failed
}
