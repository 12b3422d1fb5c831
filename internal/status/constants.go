// internal/status/constants.go
package status

// Health codes. These values are exported as the basedctl_health gauge and
// MUST NOT change meaning.

// HealthUnknown represents a run that never reached the device.
const HealthUnknown uint16 = 0

// HealthOK represents a complete info run.
const HealthOK uint16 = 1

// HealthError represents a run that stopped on an error.
const HealthError uint16 = 2

// ---- METRIC NAMES ----

const namespace = "basedctl"

// StepLabel is the label carrying the info step name.
const StepLabel = "step"
