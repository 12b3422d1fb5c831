// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/packet"
	"github.com/tamzrod/basedctl/internal/transport"
)

// State is the session lifecycle position.
//
//	Unconnected -> Connecting -> Initialized -> Idle <-> Busy -> Closed
type State uint8

const (
	StateUnconnected State = iota
	StateConnecting
	StateInitialized
	StateIdle
	StateBusy
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnecting:
		return "connecting"
	case StateInitialized:
		return "initialized"
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// HandshakeOpcode is the request the headsets require before any command.
var HandshakeOpcode = packet.Opcode{Block: 0x00, Function: 0x01}

// handshakePayloadLen is the firmware version string the handshake answers with.
const handshakePayloadLen = 5

var ErrClosed = errors.New("session: closed")

// Config is everything Open needs besides the address.
type Config struct {
	Transport transport.Config
	Codec     packet.Codec
	Handshake packet.Opcode
	Dial      transport.Dialer
	Logger    zerolog.Logger
	// Now is the clock receive deadlines are measured on. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig uses the real transport and the stock handshake.
func DefaultConfig() Config {
	return Config{
		Transport: transport.DefaultConfig(),
		Handshake: HandshakeOpcode,
		Dial:      transport.Open,
		Logger:    zerolog.Nop(),
	}
}

// Session owns one connected stream to one headset.
// It is strictly synchronous: callers send one request and consume its
// response frames before sending the next. It is not safe for concurrent use.
type Session struct {
	addr  transport.Address
	conn  transport.Conn
	codec packet.Codec
	log   zerolog.Logger
	state State

	receiveTimeout time.Duration
	now            func() time.Time
}

// Open connects and performs the initialization handshake.
// It returns either a ready session or a connection error; a failed open
// never leaks the underlying stream.
func Open(cfg Config, addr transport.Address) (*Session, error) {
	dial := cfg.Dial
	if dial == nil {
		dial = transport.Open
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		addr:           addr,
		codec:          cfg.Codec,
		log:            cfg.Logger.With().Str("address", addr.String()).Logger(),
		state:          StateConnecting,
		receiveTimeout: cfg.Transport.ReceiveTimeout,
		now:            now,
	}
	if !s.codec.Verifies() {
		s.log.Warn().Msg("frames carry no checksum, corrupted responses will not be detected")
	}

	conn, err := dial(cfg.Transport, addr)
	if err != nil {
		s.state = StateClosed
		return nil, fault.Wrap(fault.KindConnection, "connect", err)
	}
	s.conn = conn
	s.state = StateInitialized

	if err := s.handshake(cfg.Handshake); err != nil {
		_ = s.Close()
		return nil, &fault.Error{Kind: fault.KindConnection, Op: "handshake", Err: err}
	}

	s.state = StateIdle
	s.log.Debug().Msg("session ready")
	return s, nil
}

func (s *Session) handshake(op packet.Opcode) error {
	if err := s.Send(packet.Frame{Opcode: op, Operator: packet.OpGet}); err != nil {
		return err
	}
	resp, err := s.Receive()
	if err != nil {
		return err
	}
	if resp.Opcode != op || resp.Operator != packet.OpStatus || len(resp.Payload) != handshakePayloadLen {
		return fmt.Errorf("unexpected handshake response %s", resp)
	}
	s.log.Debug().Str("firmware", string(resp.Payload)).Msg("handshake ok")
	return nil
}

func (s *Session) Address() transport.Address { return s.addr }

func (s *Session) State() State { return s.state }

// Send encodes f and writes the whole frame within the send timeout.
func (s *Session) Send(f packet.Frame) error {
	raw, err := s.codec.Encode(f)
	if err != nil {
		return err
	}
	return s.SendRaw(raw)
}

// SendRaw writes pre-encoded bytes. Raw packet mode uses it directly.
func (s *Session) SendRaw(raw []byte) error {
	if err := s.begin(); err != nil {
		return err
	}
	defer s.end()

	s.log.Trace().Str("tx", packet.FormatHex(raw)).Msg("send")
	if _, err := s.conn.Write(raw); err != nil {
		return classify("send", err)
	}
	return nil
}

// Receive reads and validates exactly one frame, waiting at most the
// receive timeout for all of it.
func (s *Session) Receive() (packet.Frame, error) {
	raw, err := s.ReceiveRaw()
	if err != nil {
		return packet.Frame{}, err
	}
	return s.codec.Decode(raw)
}

// ReceiveRaw reads one frame's bytes without validating the checksum.
func (s *Session) ReceiveRaw() ([]byte, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	raw, err := s.codec.ReadFrame(s.frameReader())
	if err != nil {
		return nil, classify("receive", err)
	}
	s.log.Trace().Str("rx", packet.FormatHex(raw)).Msg("receive")
	return raw, nil
}

// Close releases the stream. Closed is terminal; repeated calls are no-ops.
func (s *Session) Close() error {
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.log.Debug().Msg("session closed")
	return err
}

// frameReader bounds one frame read by a single deadline, however many
// reads the frame arrives in.
func (s *Session) frameReader() io.Reader {
	if s.receiveTimeout <= 0 {
		return s.conn
	}
	return &deadlineReader{
		conn:     s.conn,
		deadline: s.now().Add(s.receiveTimeout),
		now:      s.now,
	}
}

type deadlineReader struct {
	conn     transport.Conn
	deadline time.Time
	now      func() time.Time
}

func (r *deadlineReader) Read(p []byte) (int, error) {
	if !r.now().Before(r.deadline) {
		return 0, transport.ErrTimeout
	}
	if d, ok := r.conn.(transport.Deadliner); ok {
		if err := d.SetReadDeadline(r.deadline); err != nil {
			return 0, err
		}
	}
	return r.conn.Read(p)
}

func (s *Session) begin() error {
	switch s.state {
	case StateInitialized, StateIdle:
		s.state = StateBusy
		return nil
	case StateClosed:
		return fault.Wrap(fault.KindIO, "", ErrClosed)
	default:
		return fault.Wrap(fault.KindIO, "", fmt.Errorf("session: not ready (%s)", s.state))
	}
}

func (s *Session) end() {
	if s.state == StateBusy {
		s.state = StateIdle
	}
}

// classify maps transport errors onto the fault taxonomy. Protocol errors
// raised while framing keep their kind.
func classify(op string, err error) error {
	switch {
	case fault.KindOf(err) != 0:
		return fault.Wrap(0, op, err)
	case errors.Is(err, transport.ErrTimeout):
		return &fault.Error{Kind: fault.KindTimeout, Op: op, Err: err}
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return &fault.Error{Kind: fault.KindIO, Op: op, Err: fmt.Errorf("connection closed by device: %w", err)}
	default:
		return &fault.Error{Kind: fault.KindIO, Op: op, Err: err}
	}
}
