// internal/writer/textfile.go
package writer

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tamzrod/basedctl/internal/device"
	"github.com/tamzrod/basedctl/internal/poller"
	"github.com/tamzrod/basedctl/internal/status"
)

// Textfile writes a Prometheus textfile (node_exporter textfile collector
// format) for every run, failed runs included.
type Textfile struct {
	path string
}

func NewTextfile(path string) *Textfile {
	return &Textfile{path: path}
}

func (t *Textfile) Write(res poller.PollResult) error {
	c := status.NewCollectors()
	c.Observe(Snapshot(res))
	if err := prometheus.WriteToTextfile(t.path, c.Registry()); err != nil {
		return fmt.Errorf("textfile writer: %w", err)
	}
	return nil
}

// Snapshot reduces a run to what the metrics export.
func Snapshot(res poller.PollResult) status.Snapshot {
	s := status.Snapshot{
		Address:       res.Address,
		At:            res.At,
		Health:        status.HealthOK,
		LastErrorCode: res.RawErrorCode,
		Attempts:      make(map[string]int, len(res.Steps)),
	}
	for _, sr := range res.Steps {
		s.Attempts[string(sr.Step)] = sr.Attempts
	}

	if res.Err != nil {
		s.Health = status.HealthError
		if len(res.Steps) == 0 {
			s.Health = status.HealthUnknown
		}
		return s
	}

	info := res.Info
	s.ModelID = info.Identity.ModelID
	s.ModelIndex = info.Identity.Index
	s.Firmware = info.Firmware
	s.Serial = info.Serial
	s.Name = info.Status.Name
	s.BatteryPercent = info.Battery
	s.PairedDevices = len(info.Paired.Devices)
	s.ConnectedDevices = info.Paired.Connected
	s.NoiseCancelling = -1
	if info.Status.NoiseCancelling != device.NoiseCancellingUnsupported {
		s.NoiseCancelling = int(info.Status.NoiseCancelling)
	}
	return s
}
