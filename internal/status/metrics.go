// internal/status/metrics.go
package status

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Collectors is the metric set for one headset. Every invocation builds a
// fresh set on its own registry; nothing is registered globally.
type Collectors struct {
	reg *prometheus.Registry

	health     *prometheus.GaugeVec
	lastError  *prometheus.GaugeVec
	lastRun    *prometheus.GaugeVec
	attempts   *prometheus.GaugeVec
	battery    *prometheus.GaugeVec
	paired     *prometheus.GaugeVec
	connected  *prometheus.GaugeVec
	noiseLevel *prometheus.GaugeVec
	info       *prometheus.GaugeVec
}

func gauge(name, help string, labels ...string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		append([]string{"address"}, labels...),
	)
}

func NewCollectors() *Collectors {
	c := &Collectors{
		reg:        prometheus.NewRegistry(),
		health:     gauge("health", "Outcome of the last info run (0 unknown, 1 ok, 2 error)."),
		lastError:  gauge("last_error_code", "Exit code class of the last failure, 0 when healthy."),
		lastRun:    gauge("last_run_timestamp_seconds", "Unix time the last info run started."),
		attempts:   gauge("step_attempts", "Attempts the last info run needed per query.", StepLabel),
		battery:    gauge("battery_level_percent", "Battery charge in percent."),
		paired:     gauge("paired_devices", "Devices in the pairing list."),
		connected:  gauge("connected_devices", "Devices currently connected."),
		noiseLevel: gauge("noise_cancelling_level", "Noise cancelling wire value, -1 when unsupported."),
		info:       gauge("device_info", "Static device facts, always 1.", "model", "index", "firmware", "serial", "name"),
	}
	c.reg.MustRegister(
		c.health, c.lastError, c.lastRun, c.attempts,
		c.battery, c.paired, c.connected, c.noiseLevel, c.info,
	)
	return c
}

func (c *Collectors) Registry() *prometheus.Registry { return c.reg }

// Observe records s. Device facts are only exported for a healthy snapshot
// so a failed run never publishes stale or partial values.
func (c *Collectors) Observe(s Snapshot) {
	a := s.Address
	c.health.WithLabelValues(a).Set(float64(s.Health))
	c.lastError.WithLabelValues(a).Set(float64(s.LastErrorCode))
	if !s.At.IsZero() {
		c.lastRun.WithLabelValues(a).Set(float64(s.At.Unix()))
	}
	for step, n := range s.Attempts {
		c.attempts.WithLabelValues(a, step).Set(float64(n))
	}

	if s.Health != HealthOK {
		return
	}
	c.battery.WithLabelValues(a).Set(float64(s.BatteryPercent))
	c.paired.WithLabelValues(a).Set(float64(s.PairedDevices))
	c.connected.WithLabelValues(a).Set(float64(s.ConnectedDevices))
	c.noiseLevel.WithLabelValues(a).Set(float64(s.NoiseCancelling))
	c.info.WithLabelValues(
		a,
		fmt.Sprintf("0x%04x", s.ModelID),
		fmt.Sprintf("%d", s.ModelIndex),
		s.Firmware,
		s.Serial,
		s.Name,
	).Set(1)
}
