// internal/device/client.go
package device

import (
	"bytes"
	"encoding/binary"

	"github.com/rs/zerolog"

	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/packet"
)

// MaxNameLen is the longest device name the headsets store.
const MaxNameLen = 31

// Conn is the frame exchange the client needs. *session.Session satisfies it.
type Conn interface {
	Send(packet.Frame) error
	Receive() (packet.Frame, error)
}

// Identity is the model id and its index, always reported together.
type Identity struct {
	ModelID uint16
	Index   uint8
}

// Client runs the command protocol over one Conn.
// One request is outstanding at a time; every method consumes the full
// response before returning.
type Client struct {
	conn Conn
	cat  Catalog
	caps Capabilities
	log  zerolog.Logger

	identity *Identity
}

type Option func(*Client)

func WithCatalog(c Catalog) Option {
	return func(cl *Client) { cl.cat = c }
}

func WithCapabilities(c Capabilities) Option {
	return func(cl *Client) { cl.caps = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.log = l }
}

func NewClient(conn Conn, opts ...Option) *Client {
	c := &Client{
		conn: conn,
		cat:  DefaultCatalog(),
		caps: DefaultCapabilities(),
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ---- exchange helpers ----

func (c *Client) send(op string, cmd Command, operator packet.Operator, payload []byte) error {
	f := packet.Frame{Opcode: c.cat.Opcode(cmd), Operator: operator, Payload: payload}
	c.log.Debug().Str("op", op).Stringer("frame", f).Msg("request")
	return fault.Wrap(fault.KindIO, op, c.conn.Send(f))
}

// receive reads one frame addressed to cmd. An error operator becomes a
// device fault; a frame for any other opcode is a protocol fault.
func (c *Client) receive(op string, cmd Command) (packet.Frame, error) {
	f, err := c.conn.Receive()
	if err != nil {
		return packet.Frame{}, fault.Wrap(fault.KindIO, op, err)
	}
	want := c.cat.Opcode(cmd)
	if f.Opcode != want {
		return f, fault.Protocolf(op, "unexpected opcode %s (want %s)", f.Opcode, want)
	}
	if f.Operator == packet.OpError {
		return f, deviceFault(op, f)
	}
	return f, nil
}

// exchange sends one request and expects a single reply carrying one of
// the accepted operators.
func (c *Client) exchange(op string, cmd Command, operator packet.Operator, payload []byte, accept ...packet.Operator) (packet.Frame, error) {
	if err := c.send(op, cmd, operator, payload); err != nil {
		return packet.Frame{}, err
	}
	f, err := c.receive(op, cmd)
	if err != nil {
		return f, err
	}
	for _, a := range accept {
		if f.Operator == a {
			return f, nil
		}
	}
	return f, fault.Protocolf(op, "unexpected operator %s", f.Operator)
}

func (c *Client) get(op string, cmd Command, payload []byte) ([]byte, error) {
	f, err := c.exchange(op, cmd, packet.OpGet, payload, packet.OpStatus)
	return f.Payload, err
}

func deviceFault(op string, f packet.Frame) error {
	var code byte
	if len(f.Payload) > 0 {
		code = f.Payload[0]
	}
	return &fault.Error{
		Kind: fault.KindDevice,
		Op:   op,
		Err:  &fault.DeviceError{Block: f.Opcode.Block, Function: f.Opcode.Function, Status: code},
	}
}

// ---- read-only queries ----

// firmwareLen is the "X.Y.Z" version string length.
const firmwareLen = 5

func (c *Client) FirmwareVersion() (string, error) {
	const op = "firmware version"
	p, err := c.get(op, CmdFirmwareVersion, nil)
	if err != nil {
		return "", err
	}
	if len(p) != firmwareLen {
		return "", fault.Protocolf(op, "version length %d, want %d", len(p), firmwareLen)
	}
	return string(p), nil
}

func (c *Client) SerialNumber() (string, error) {
	const op = "serial number"
	p, err := c.get(op, CmdSerialNumber, nil)
	if err != nil {
		return "", err
	}
	if len(p) == 0 {
		return "", fault.Protocolf(op, "empty serial number")
	}
	return string(bytes.TrimRight(p, "\x00")), nil
}

// BatteryLevel returns the charge in percent.
func (c *Client) BatteryLevel() (int, error) {
	const op = "battery level"
	p, err := c.get(op, CmdBatteryLevel, nil)
	if err != nil {
		return 0, err
	}
	if len(p) != 1 {
		return 0, fault.Protocolf(op, "payload length %d, want 1", len(p))
	}
	if p[0] > 100 {
		return 0, fault.Protocolf(op, "level %d out of range", p[0])
	}
	return int(p[0]), nil
}

// DeviceID queries the model identity. The result is cached for the
// capability checks later in the same session.
func (c *Client) DeviceID() (Identity, error) {
	const op = "device id"
	p, err := c.get(op, CmdDeviceID, nil)
	if err != nil {
		return Identity{}, err
	}
	if len(p) != 3 {
		return Identity{}, fault.Protocolf(op, "payload length %d, want 3", len(p))
	}
	id := Identity{ModelID: binary.BigEndian.Uint16(p[:2]), Index: p[2]}
	c.identity = &id
	return id, nil
}

// ---- setters ----

// ValidateName checks a new device name without touching the wire.
func ValidateName(name string) error {
	const op = "set name"
	if len(name) == 0 {
		return fault.Usagef(op, "name must not be empty")
	}
	if len(name) > MaxNameLen {
		return fault.Usagef(op, "name is %d bytes, max %d", len(name), MaxNameLen)
	}
	return nil
}

// SetName sends the name bytes as they are, without padding.
func (c *Client) SetName(name string) error {
	const op = "set name"
	if err := ValidateName(name); err != nil {
		return err
	}

	f, err := c.exchange(op, CmdName, packet.OpSet, []byte(name), packet.OpStatus)
	if err != nil {
		return err
	}
	// reply: [0x00][stored name]
	if len(f.Payload) < 1 || string(f.Payload[1:]) != name {
		return fault.Protocolf(op, "device stored %q", f.Payload)
	}
	return nil
}

func (c *Client) SetAutoOff(a AutoOff) error {
	const op = "set auto-off"
	if !autoOffTokens.has(a) {
		return fault.Usagef(op, "invalid auto-off %d", byte(a))
	}
	return c.setByte(op, CmdAutoOff, byte(a))
}

// SetNoiseCancelling checks the model first. On a model without noise
// cancelling no setting frame is sent.
func (c *Client) SetNoiseCancelling(n NoiseCancelling) error {
	const op = "set noise cancelling"
	if !noiseCancellingTokens.has(n) {
		return fault.Usagef(op, "invalid noise cancelling level 0x%02x", byte(n))
	}

	id := c.identity
	if id == nil {
		got, err := c.DeviceID()
		if err != nil {
			return err
		}
		id = &got
	}
	if !c.caps.HasNoiseCancelling(id.ModelID) {
		return fault.Capabilityf(op, "model 0x%04x has no noise cancelling", id.ModelID)
	}
	return c.setByte(op, CmdNoiseCancelling, byte(n))
}

// SetPromptLanguage keeps the voice prompt flag as the device reports it.
func (c *Client) SetPromptLanguage(l PromptLanguage) error {
	const op = "set prompt language"
	if !l.Known() {
		return fault.Usagef(op, "invalid language 0x%02x", byte(l))
	}
	st, err := c.DeviceStatus()
	if err != nil {
		return fault.Wrap(0, op, err)
	}
	return c.setPrompt(op, PromptSetting{Language: l, VoicePrompts: st.Prompt.VoicePrompts})
}

// SetVoicePrompts keeps the language as the device reports it.
func (c *Client) SetVoicePrompts(on bool) error {
	const op = "set voice prompts"
	st, err := c.DeviceStatus()
	if err != nil {
		return fault.Wrap(0, op, err)
	}
	return c.setPrompt(op, PromptSetting{Language: st.Prompt.Language, VoicePrompts: on})
}

func (c *Client) setPrompt(op string, p PromptSetting) error {
	f, err := c.exchange(op, CmdPromptLanguage, packet.OpSet, []byte{p.Byte()}, packet.OpStatus)
	if err != nil {
		return err
	}
	if len(f.Payload) < 1 || DecodePromptByte(f.Payload[0]) != p {
		return fault.Protocolf(op, "device did not confirm prompt byte 0x%02x", p.Byte())
	}
	return nil
}

func (c *Client) SetPairing(p Pairing) error {
	const op = "set pairing"
	if !pairingTokens.has(p) {
		return fault.Usagef(op, "invalid pairing value 0x%02x", byte(p))
	}
	f, err := c.exchange(op, CmdPairing, packet.OpStart, []byte{byte(p)}, packet.OpResult)
	if err != nil {
		return err
	}
	if len(f.Payload) < 1 || f.Payload[0] != byte(p) {
		return fault.Protocolf(op, "device did not confirm pairing %s", p)
	}
	return nil
}

// Self voice payload framing around the level byte.
const (
	selfVoicePrefix  byte = 0x01
	selfVoiceSuffix  byte = 0x38
	selfVoiceLevelAt      = 1
)

func (c *Client) SetSelfVoice(v SelfVoice) error {
	const op = "set self voice"
	if !selfVoiceTokens.has(v) {
		return fault.Usagef(op, "invalid self voice level 0x%02x", byte(v))
	}
	payload := []byte{selfVoicePrefix, byte(v), selfVoiceSuffix}
	f, err := c.exchange(op, CmdSelfVoice, packet.OpSet, payload, packet.OpStatus)
	if err != nil {
		return err
	}
	if len(f.Payload) <= selfVoiceLevelAt || f.Payload[selfVoiceLevelAt] != byte(v) {
		return fault.Protocolf(op, "device did not confirm self voice %s", v)
	}
	return nil
}

// setByte sends a one byte Set and expects the value echoed in the first
// byte of the Status reply.
func (c *Client) setByte(op string, cmd Command, v byte) error {
	f, err := c.exchange(op, cmd, packet.OpSet, []byte{v}, packet.OpStatus)
	if err != nil {
		return err
	}
	if len(f.Payload) < 1 || f.Payload[0] != v {
		return fault.Protocolf(op, "device did not confirm value 0x%02x", v)
	}
	return nil
}
