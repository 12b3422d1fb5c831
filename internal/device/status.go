// internal/device/status.go
package device

import (
	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/packet"
)

// Status is the settings snapshot the device reports in one status run.
type Status struct {
	Name            string
	Prompt          PromptSetting
	AutoOff         AutoOff
	NoiseCancelling NoiseCancelling
	// SelfVoice is only meaningful when HasSelfVoice is set.
	SelfVoice    SelfVoice
	HasSelfVoice bool
}

// maxStatusFrames bounds a status run so a chatty device cannot keep us reading forever.
const maxStatusFrames = 32

// DeviceStatus starts a status run and collects the settings frames up to
// the closing Result frame. Name, language and auto-off are mandatory;
// noise cancelling reads as unsupported when absent.
func (c *Client) DeviceStatus() (Status, error) {
	const op = "device status"

	if _, err := c.exchange(op, CmdDeviceStatus, packet.OpStart, nil, packet.OpProcessing); err != nil {
		return Status{}, err
	}

	st := Status{NoiseCancelling: NoiseCancellingUnsupported}
	seen := make(map[Command]bool, len(statusSettings))
	done := c.cat.Opcode(CmdDeviceStatus)

	for i := 0; ; i++ {
		if i == maxStatusFrames {
			return Status{}, fault.Protocolf(op, "no end of status after %d frames", maxStatusFrames)
		}
		f, err := c.conn.Receive()
		if err != nil {
			return Status{}, fault.Wrap(fault.KindIO, op, err)
		}
		if f.Operator == packet.OpError {
			return Status{}, deviceFault(op, f)
		}
		if f.Opcode == done {
			if f.Operator != packet.OpResult {
				return Status{}, fault.Protocolf(op, "unexpected operator %s", f.Operator)
			}
			break
		}

		cmd, ok := c.cat.lookup(f.Opcode)
		if !ok || f.Opcode.Block != done.Block {
			// settings this client does not model
			c.log.Debug().Stringer("opcode", f.Opcode).Msg("skipping status frame")
			continue
		}
		if f.Operator != packet.OpStatus {
			return Status{}, fault.Protocolf(op, "unexpected operator %s for %s", f.Operator, cmd)
		}
		if err := st.apply(cmd, f.Payload); err != nil {
			return Status{}, fault.Wrap(fault.KindProtocol, op, err)
		}
		seen[cmd] = true
	}

	for _, cmd := range []Command{CmdName, CmdPromptLanguage, CmdAutoOff} {
		if !seen[cmd] {
			return Status{}, fault.Protocolf(op, "status is missing %s", cmd)
		}
	}
	return st, nil
}

// apply decodes one setting payload into st.
func (st *Status) apply(cmd Command, p []byte) error {
	op := string(cmd)
	switch cmd {
	case CmdName:
		// leading byte is not part of the name
		if len(p) < 1 {
			return fault.Protocolf(op, "empty name frame")
		}
		if len(p)-1 > MaxNameLen {
			return fault.Protocolf(op, "name is %d bytes, max %d", len(p)-1, MaxNameLen)
		}
		st.Name = string(p[1:])

	case CmdPromptLanguage:
		if len(p) < 1 {
			return fault.Protocolf(op, "empty language frame")
		}
		st.Prompt = DecodePromptByte(p[0])

	case CmdAutoOff:
		if len(p) < 1 {
			return fault.Protocolf(op, "empty auto-off frame")
		}
		a := AutoOff(p[0])
		if !autoOffTokens.has(a) {
			return fault.Protocolf(op, "unknown auto-off value %d", p[0])
		}
		st.AutoOff = a

	case CmdNoiseCancelling:
		if len(p) < 1 {
			return fault.Protocolf(op, "empty noise cancelling frame")
		}
		n := NoiseCancelling(p[0])
		if !noiseCancellingTokens.has(n) {
			return fault.Protocolf(op, "unknown noise cancelling level 0x%02x", p[0])
		}
		st.NoiseCancelling = n

	case CmdSelfVoice:
		if len(p) <= selfVoiceLevelAt {
			return fault.Protocolf(op, "short self voice frame")
		}
		v := SelfVoice(p[selfVoiceLevelAt])
		if !selfVoiceTokens.has(v) {
			return fault.Protocolf(op, "unknown self voice level 0x%02x", byte(v))
		}
		st.SelfVoice = v
		st.HasSelfVoice = true
	}
	return nil
}
