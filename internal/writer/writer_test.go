// internal/writer/writer_test.go
package writer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tamzrod/basedctl/internal/config"
	"github.com/tamzrod/basedctl/internal/device"
	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/poller"
	"github.com/tamzrod/basedctl/internal/status"
	"github.com/tamzrod/basedctl/internal/transport"
)

func okResult() poller.PollResult {
	return poller.PollResult{
		Address: "AA:BB:CC:DD:EE:FF",
		At:      time.Unix(1700000000, 0),
		Steps: []poller.StepResult{
			{Step: poller.StepIdentity, Attempts: 1},
			{Step: poller.StepBattery, Attempts: 2},
		},
		Info: poller.Info{
			Identity: device.Identity{ModelID: 0x4020, Index: 2},
			Serial:   "067551Z6",
			Firmware: "1.2.9",
			Battery:  87,
			Status: device.Status{
				Name:            "QC35",
				Prompt:          device.PromptSetting{Language: device.LanguageEN, VoicePrompts: true},
				AutoOff:         device.AutoOff20,
				NoiseCancelling: device.NoiseCancellingHigh,
			},
			Paired: device.PairedDevices{
				Connected: 1,
				Devices: []device.PairedDevice{
					{Address: transport.Address{0x11, 0x22, 0x33, 0x44, 0x55, 0x66}, Name: "Pixel", Status: device.StatusThisDevice},
					{Address: transport.Address{0x11, 0x22, 0x33, 0x44, 0x55, 0x77}, Name: "laptop", Status: device.StatusDisconnected},
				},
			},
		},
	}
}

// ---- tests ----

func TestConsole_InfoRun(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsole(&buf).Write(okResult()); err != nil {
		t.Fatalf("write: %v", err)
	}

	want := strings.Join([]string{
		"Device ID: 0x4020 | Index: 2",
		"Serial number: 067551Z6",
		"Firmware version: 1.2.9",
		"Battery level: 87",
		"Status:",
		"\tName: QC35",
		"\tLanguage: en",
		"\tVoice Prompts: on",
		"\tAuto-Off: 20",
		"\tNoise Cancelling: high",
		"Paired devices: 2",
		"\tConnected: 1",
		"\tDevice: ! | 11:22:33:44:55:66 | Pixel",
		"\tDevice:   | 11:22:33:44:55:77 | laptop",
		"\t[!] Indicates the current device.",
		"\t[*] Indicates other connected devices.",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestConsole_StatusWithoutNoiseCancelling(t *testing.T) {
	var buf bytes.Buffer
	err := NewConsole(&buf).Status(device.Status{
		Name:            "SoundLink",
		Prompt:          device.PromptSetting{Language: device.PromptLanguage(0x30)},
		AutoOff:         device.AutoOffNever,
		NoiseCancelling: device.NoiseCancellingUnsupported,
		SelfVoice:       device.SelfVoiceLow,
		HasSelfVoice:    true,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if strings.Contains(out, "Noise Cancelling") {
		t.Fatalf("noise cancelling printed for unsupported model:\n%s", out)
	}
	for _, line := range []string{"\tLanguage: Unknown [0x30]", "\tAuto-Off: never", "\tVoice Prompts: off", "\tSelf Voice: low"} {
		if !strings.Contains(out, line+"\n") {
			t.Fatalf("missing %q in:\n%s", line, out)
		}
	}
}

func TestConsole_Packet(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsole(&buf).Packet([]byte{0x02, 0x02, 0x03, 0x01, 0x57}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != "Received package:\n\t02 02 03 01 57 \n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestConsole_FailedRunPrintsNothing(t *testing.T) {
	var buf bytes.Buffer
	res := okResult()
	res.Err = errors.New("boom")
	if err := NewConsole(&buf).Write(res); err != nil || buf.Len() != 0 {
		t.Fatalf("err=%v output=%q", err, buf.String())
	}
}

func TestSnapshot(t *testing.T) {
	s := Snapshot(okResult())
	if s.Health != status.HealthOK || s.BatteryPercent != 87 || s.NoiseCancelling != 1 {
		t.Fatalf("snapshot %+v", s)
	}
	if s.Attempts["battery"] != 2 || s.PairedDevices != 2 {
		t.Fatalf("snapshot %+v", s)
	}

	res := okResult()
	res.Err = fault.Protocolf("paired devices", "bad count")
	res.RawErrorCode = 3
	s = Snapshot(res)
	if s.Health != status.HealthError || s.LastErrorCode != 3 || s.BatteryPercent != 0 {
		t.Fatalf("failed snapshot %+v", s)
	}
}

func TestTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basedctl.prom")
	w := Build(config.MetricsConfig{Textfile: path}, &bytes.Buffer{})

	if err := w.Write(okResult()); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		`basedctl_battery_level_percent{address="AA:BB:CC:DD:EE:FF"} 87`,
		`basedctl_health{address="AA:BB:CC:DD:EE:FF"} 1`,
	} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("missing %q in:\n%s", want, data)
		}
	}
}

func TestBuild_ConsoleOnly(t *testing.T) {
	w := Build(config.MetricsConfig{}, &bytes.Buffer{})
	if m, ok := w.(multi); !ok || len(m) != 1 {
		t.Fatalf("expected console only, got %#v", w)
	}
}
