// internal/device/client_test.go
package device

import (
	"bytes"
	"errors"
	"testing"

	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/packet"
	"github.com/tamzrod/basedctl/internal/transport"
)

// ---- fake device ----

// fakeConn answers the n-th request with replies[n]. Receiving with nothing
// queued behaves like an expired receive window.
type fakeConn struct {
	replies [][]packet.Frame
	sent    []packet.Frame
	queue   []packet.Frame
}

func (f *fakeConn) Send(fr packet.Frame) error {
	f.sent = append(f.sent, fr)
	if n := len(f.sent) - 1; n < len(f.replies) {
		f.queue = append(f.queue, f.replies[n]...)
	}
	return nil
}

func (f *fakeConn) Receive() (packet.Frame, error) {
	if len(f.queue) == 0 {
		return packet.Frame{}, &fault.Error{Kind: fault.KindTimeout, Op: "receive", Err: transport.ErrTimeout}
	}
	fr := f.queue[0]
	f.queue = f.queue[1:]
	return fr, nil
}

func frame(block, function byte, op packet.Operator, payload ...byte) packet.Frame {
	return packet.Frame{Opcode: packet.Opcode{Block: block, Function: function}, Operator: op, Payload: payload}
}

func reply(frames ...packet.Frame) []packet.Frame { return frames }

// statusRun is a complete status exchange for a QC35 style headset.
func statusRun(promptByte byte) []packet.Frame {
	return reply(
		frame(0x01, 0x01, packet.OpProcessing),
		frame(0x01, 0x02, packet.OpStatus, append([]byte{0x00}, "Bose QC35"...)...),
		frame(0x01, 0x03, packet.OpStatus, promptByte, 0x00, 0x04, 0x00, 0xde),
		frame(0x01, 0x04, packet.OpStatus, 20),
		frame(0x01, 0x06, packet.OpStatus, 0x01, 0x0b),
		frame(0x01, 0x01, packet.OpResult),
	)
}

// ---- queries ----

func TestBatteryLevel(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x02, 0x02, packet.OpStatus, 87)),
	}}
	c := NewClient(conn)

	level, err := c.BatteryLevel()
	if err != nil {
		t.Fatalf("battery: %v", err)
	}
	if level != 87 {
		t.Fatalf("level=%d want 87", level)
	}
	want := frame(0x02, 0x02, packet.OpGet)
	if got := conn.sent[0]; got.Opcode != want.Opcode || got.Operator != want.Operator || len(got.Payload) != 0 {
		t.Fatalf("unexpected request %v", got)
	}
}

func TestBatteryLevel_Malformed(t *testing.T) {
	tests := []struct {
		name string
		resp packet.Frame
	}{
		{"out of range", frame(0x02, 0x02, packet.OpStatus, 101)},
		{"too long", frame(0x02, 0x02, packet.OpStatus, 50, 1)},
		{"empty", frame(0x02, 0x02, packet.OpStatus)},
		{"wrong opcode", frame(0x02, 0x03, packet.OpStatus, 50)},
		{"wrong operator", frame(0x02, 0x02, packet.OpResult, 50)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(&fakeConn{replies: [][]packet.Frame{reply(tt.resp)}})
			if _, err := c.BatteryLevel(); !fault.IsKind(err, fault.KindProtocol) {
				t.Fatalf("expected protocol error, got %v", err)
			}
		})
	}
}

func TestBatteryLevel_Timeout(t *testing.T) {
	c := NewClient(&fakeConn{})
	if _, err := c.BatteryLevel(); !fault.IsKind(err, fault.KindTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestErrorOperatorIsDeviceFault(t *testing.T) {
	c := NewClient(&fakeConn{replies: [][]packet.Frame{
		reply(frame(0x00, 0x07, packet.OpError, 0x05)),
	}})

	_, err := c.SerialNumber()
	if !fault.IsKind(err, fault.KindDevice) {
		t.Fatalf("expected device error, got %v", err)
	}
	var de *fault.DeviceError
	if !errors.As(err, &de) || de.Status != 0x05 {
		t.Fatalf("expected device status 0x05, got %v", err)
	}
}

func TestFirmwareAndSerial(t *testing.T) {
	c := NewClient(&fakeConn{replies: [][]packet.Frame{
		reply(frame(0x00, 0x05, packet.OpStatus, '1', '.', '2', '.', '9')),
		reply(frame(0x00, 0x07, packet.OpStatus, append([]byte("067551Z60080094AE"), 0x00)...)),
	}})

	fw, err := c.FirmwareVersion()
	if err != nil || fw != "1.2.9" {
		t.Fatalf("firmware=%q err=%v", fw, err)
	}
	sn, err := c.SerialNumber()
	if err != nil || sn != "067551Z60080094AE" {
		t.Fatalf("serial=%q err=%v", sn, err)
	}
}

func TestDeviceID(t *testing.T) {
	c := NewClient(&fakeConn{replies: [][]packet.Frame{
		reply(frame(0x00, 0x03, packet.OpStatus, 0x40, 0x20, 0x02)),
	}})

	id, err := c.DeviceID()
	if err != nil {
		t.Fatalf("device id: %v", err)
	}
	if id.ModelID != 0x4020 || id.Index != 2 {
		t.Fatalf("unexpected identity %+v", id)
	}
}

// ---- setters ----

func TestSetName_TooLongSendsNothing(t *testing.T) {
	conn := &fakeConn{}
	c := NewClient(conn)

	err := c.SetName(string(bytes.Repeat([]byte{'a'}, MaxNameLen+1)))
	if !fault.IsKind(err, fault.KindUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if len(conn.sent) != 0 {
		t.Fatalf("sent %d frames, want 0", len(conn.sent))
	}
}

func TestSetName_SendsNameBytes(t *testing.T) {
	name := string(bytes.Repeat([]byte{'n'}, MaxNameLen))
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x01, 0x02, packet.OpStatus, append([]byte{0x00}, name...)...)),
	}}
	c := NewClient(conn)

	if err := c.SetName(name); err != nil {
		t.Fatalf("set name: %v", err)
	}
	got := conn.sent[0]
	if got.Operator != packet.OpSet || string(got.Payload) != name {
		t.Fatalf("unexpected request %v %q", got, got.Payload)
	}
}

func TestSetName_NotConfirmed(t *testing.T) {
	c := NewClient(&fakeConn{replies: [][]packet.Frame{
		reply(frame(0x01, 0x02, packet.OpStatus, 0x00, 'x')),
	}})
	if err := c.SetName("headset"); !fault.IsKind(err, fault.KindProtocol) {
		t.Fatalf("expected protocol error, got %v", err)
	}
}

func TestSetAutoOff(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x01, 0x04, packet.OpStatus, 20)),
	}}
	c := NewClient(conn)

	if err := c.SetAutoOff(AutoOff20); err != nil {
		t.Fatalf("set auto-off: %v", err)
	}
	if !bytes.Equal(conn.sent[0].Payload, []byte{20}) {
		t.Fatalf("payload % x", conn.sent[0].Payload)
	}
	if err := c.SetAutoOff(AutoOff(7)); !fault.IsKind(err, fault.KindUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if len(conn.sent) != 1 {
		t.Fatalf("invalid value was sent")
	}
}

func TestSetNoiseCancelling_UnsupportedModel(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x00, 0x03, packet.OpStatus, 0x40, 0x0c, 0x00)),
	}}
	c := NewClient(conn)

	err := c.SetNoiseCancelling(NoiseCancellingHigh)
	if !fault.IsKind(err, fault.KindCapability) {
		t.Fatalf("expected capability error, got %v", err)
	}
	for _, f := range conn.sent {
		if f.Opcode == c.cat.Opcode(CmdNoiseCancelling) {
			t.Fatalf("noise cancelling frame was sent")
		}
	}
}

func TestSetNoiseCancelling_SupportedModel(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x00, 0x03, packet.OpStatus, 0x40, 0x14, 0x01)),
		reply(frame(0x01, 0x06, packet.OpStatus, 0x03, 0x0b)),
	}}
	c := NewClient(conn)

	if err := c.SetNoiseCancelling(NoiseCancellingLow); err != nil {
		t.Fatalf("set nc: %v", err)
	}
	if len(conn.sent) != 2 || !bytes.Equal(conn.sent[1].Payload, []byte{0x03}) {
		t.Fatalf("unexpected requests %v", conn.sent)
	}
}

func TestSetNoiseCancelling_CustomCapabilities(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x00, 0x03, packet.OpStatus, 0x40, 0x14, 0x01)),
	}}
	c := NewClient(conn, WithCapabilities(NewCapabilities(nil)))

	if err := c.SetNoiseCancelling(NoiseCancellingOff); !fault.IsKind(err, fault.KindCapability) {
		t.Fatalf("expected capability error, got %v", err)
	}
}

func TestSetVoicePrompts_KeepsLanguage(t *testing.T) {
	// device reports french with prompts on
	conn := &fakeConn{replies: [][]packet.Frame{
		statusRun(0x80 | byte(LanguageFR)),
		reply(frame(0x01, 0x03, packet.OpStatus, byte(LanguageFR), 0x00, 0x04, 0x00, 0xde)),
	}}
	c := NewClient(conn)

	if err := c.SetVoicePrompts(false); err != nil {
		t.Fatalf("set voice prompts: %v", err)
	}
	last := conn.sent[len(conn.sent)-1]
	if last.Operator != packet.OpSet || !bytes.Equal(last.Payload, []byte{byte(LanguageFR)}) {
		t.Fatalf("unexpected request %v % x", last, last.Payload)
	}
}

func TestSetPromptLanguage_KeepsVoicePrompts(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		statusRun(0x80 | byte(LanguageEN)),
		reply(frame(0x01, 0x03, packet.OpStatus, 0x80|byte(LanguageDE), 0x00, 0x04, 0x00, 0xde)),
	}}
	c := NewClient(conn)

	if err := c.SetPromptLanguage(LanguageDE); err != nil {
		t.Fatalf("set language: %v", err)
	}
	last := conn.sent[len(conn.sent)-1]
	if !bytes.Equal(last.Payload, []byte{0x80 | byte(LanguageDE)}) {
		t.Fatalf("payload % x", last.Payload)
	}
}

func TestSetPairing(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x04, 0x08, packet.OpResult, 0x01)),
	}}
	c := NewClient(conn)

	if err := c.SetPairing(PairingOn); err != nil {
		t.Fatalf("set pairing: %v", err)
	}
	if conn.sent[0].Operator != packet.OpStart {
		t.Fatalf("pairing must use start, got %s", conn.sent[0].Operator)
	}
}

func TestSetSelfVoice(t *testing.T) {
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x01, 0x0b, packet.OpStatus, 0x01, 0x02, 0x0f)),
	}}
	c := NewClient(conn)

	if err := c.SetSelfVoice(SelfVoiceMedium); err != nil {
		t.Fatalf("set self voice: %v", err)
	}
	if !bytes.Equal(conn.sent[0].Payload, []byte{0x01, 0x02, 0x38}) {
		t.Fatalf("payload % x", conn.sent[0].Payload)
	}
}

func TestCatalogOverride(t *testing.T) {
	cat, err := NewCatalog(map[string]packet.Opcode{
		"battery_level": {Block: 0x12, Function: 0x02},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	conn := &fakeConn{replies: [][]packet.Frame{
		reply(frame(0x12, 0x02, packet.OpStatus, 40)),
	}}
	c := NewClient(conn, WithCatalog(cat))

	if level, err := c.BatteryLevel(); err != nil || level != 40 {
		t.Fatalf("level=%d err=%v", level, err)
	}

	if _, err := NewCatalog(map[string]packet.Opcode{"battery": {}}); err == nil {
		t.Fatalf("expected unknown command to be rejected")
	}
}
