// internal/session/session_test.go
package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/basedctl/internal/fault"
	"github.com/tamzrod/basedctl/internal/packet"
	"github.com/tamzrod/basedctl/internal/transport"
)

// ---- fake stream ----

// fakeConn answers the n-th write with replies[n]. Reads past the queued
// bytes behave like an expired receive timeout.
type fakeConn struct {
	replies  [][]byte
	writes   [][]byte
	rx       bytes.Buffer
	closed   int
	writeErr error
}

func (f *fakeConn) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), p...))
	if n := len(f.writes) - 1; n < len(f.replies) {
		f.rx.Write(f.replies[n])
	}
	return len(p), nil
}

func (f *fakeConn) Read(p []byte) (int, error) {
	if f.rx.Len() == 0 {
		return 0, transport.ErrTimeout
	}
	return f.rx.Read(p)
}

func (f *fakeConn) Close() error {
	f.closed++
	return nil
}

// dripConn hands out at most one byte per read once drip is set and moves a
// fake clock forward on every read.
type dripConn struct {
	fakeConn
	clock    time.Time
	perRead  time.Duration
	drip     bool
	deadline time.Time
}

func (d *dripConn) Read(p []byte) (int, error) {
	if d.drip && len(p) > 1 {
		p = p[:1]
	}
	n, err := d.fakeConn.Read(p)
	d.clock = d.clock.Add(d.perRead)
	return n, err
}

func (d *dripConn) SetReadDeadline(t time.Time) error {
	d.deadline = t
	return nil
}

var testAddr = transport.Address{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}

// sealed appends the default sum8 trailer.
func sealed(b ...byte) []byte {
	return append(b, packet.ChecksumSum8{}.Sum(b)...)
}

func handshakeReply() []byte {
	return sealed(0x00, 0x01, 0x03, 0x05, '1', '.', '2', '.', '9')
}

func open(t *testing.T, conn *fakeConn) (*Session, error) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Dial = func(transport.Config, transport.Address) (transport.Conn, error) {
		return conn, nil
	}
	return Open(cfg, testAddr)
}

// ---- tests ----

func TestOpen_Handshake(t *testing.T) {
	conn := &fakeConn{replies: [][]byte{handshakeReply()}}

	s, err := open(t, conn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if s.State() != StateIdle {
		t.Fatalf("state=%s want idle", s.State())
	}
	if len(conn.writes) != 1 || !bytes.Equal(conn.writes[0], sealed(0x00, 0x01, 0x01, 0x00)) {
		t.Fatalf("unexpected handshake request: % x", conn.writes)
	}
}

func TestOpen_HandshakeMismatchClosesStream(t *testing.T) {
	conn := &fakeConn{replies: [][]byte{sealed(0x00, 0x01, 0x04, 0x01, 0x02)}}

	s, err := open(t, conn)
	if s != nil {
		t.Fatalf("expected no session")
	}
	if !fault.IsKind(err, fault.KindConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if conn.closed != 1 {
		t.Fatalf("stream closed %d times, want 1", conn.closed)
	}
}

func TestOpen_HandshakeTimeout(t *testing.T) {
	conn := &fakeConn{}

	_, err := open(t, conn)
	if !fault.IsKind(err, fault.KindConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if !errors.Is(err, transport.ErrTimeout) {
		t.Fatalf("expected timeout cause, got %v", err)
	}
	if conn.closed != 1 {
		t.Fatalf("stream closed %d times, want 1", conn.closed)
	}
}

func TestOpen_DialFailure(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dial = func(transport.Config, transport.Address) (transport.Conn, error) {
		return nil, errors.New("host is down")
	}

	_, err := Open(cfg, testAddr)
	if !fault.IsKind(err, fault.KindConnection) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestSendReceive(t *testing.T) {
	conn := &fakeConn{replies: [][]byte{
		handshakeReply(),
		sealed(0x02, 0x02, 0x03, 0x01, 87),
	}}
	s, err := open(t, conn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Send(packet.Frame{Opcode: packet.Opcode{Block: 0x02, Function: 0x02}, Operator: packet.OpGet}); err != nil {
		t.Fatalf("send: %v", err)
	}
	f, err := s.Receive()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if f.Operator != packet.OpStatus || len(f.Payload) != 1 || f.Payload[0] != 87 {
		t.Fatalf("unexpected frame %v % x", f, f.Payload)
	}
	if s.State() != StateIdle {
		t.Fatalf("state=%s want idle", s.State())
	}
}

func TestReceive_TimeoutIsDistinct(t *testing.T) {
	conn := &fakeConn{replies: [][]byte{handshakeReply()}}
	s, err := open(t, conn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	_, err = s.Receive()
	if !fault.IsKind(err, fault.KindTimeout) {
		t.Fatalf("expected timeout kind, got %v", err)
	}
}

func TestSend_WriteFailure(t *testing.T) {
	conn := &fakeConn{replies: [][]byte{handshakeReply()}}
	s, err := open(t, conn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	conn.writeErr = errors.New("broken pipe")
	err = s.Send(packet.Frame{Opcode: packet.Opcode{Block: 0x02, Function: 0x02}, Operator: packet.OpGet})
	if !fault.IsKind(err, fault.KindIO) {
		t.Fatalf("expected io kind, got %v", err)
	}
}

func TestClose_Terminal(t *testing.T) {
	conn := &fakeConn{replies: [][]byte{handshakeReply()}}
	s, err := open(t, conn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	_ = s.Close()
	_ = s.Close()
	if conn.closed != 1 {
		t.Fatalf("stream closed %d times, want 1", conn.closed)
	}
	if s.State() != StateClosed {
		t.Fatalf("state=%s want closed", s.State())
	}

	err = s.Send(packet.Frame{Opcode: packet.Opcode{Block: 0x02, Function: 0x02}, Operator: packet.OpGet})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestReceive_ChecksumFailureIsProtocol(t *testing.T) {
	conn := &fakeConn{replies: [][]byte{
		{0x00, 0x01, 0x03, 0x05, '1', '.', '2', '.', '9', 0x00},
		{0x02, 0x02, 0x03, 0x01, 87, 0x00},
	}}
	// first reply gets a correct trailer, second a wrong one
	conn.replies[0][9] = packet.ChecksumXOR8{}.Sum(conn.replies[0][:9])[0]

	cfg := DefaultConfig()
	cfg.Codec = packet.Codec{Checksum: packet.ChecksumXOR8{}}
	cfg.Dial = func(transport.Config, transport.Address) (transport.Conn, error) { return conn, nil }

	s, err := Open(cfg, testAddr)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if err := s.Send(packet.Frame{Opcode: packet.Opcode{Block: 0x02, Function: 0x02}, Operator: packet.OpGet}); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, err = s.Receive()
	if !fault.IsKind(err, fault.KindProtocol) || !errors.Is(err, packet.ErrChecksum) {
		t.Fatalf("expected checksum protocol error, got %v", err)
	}
}

func TestOpen_WarnsWithoutChecksum(t *testing.T) {
	tests := []struct {
		name  string
		codec packet.Codec
		reply []byte
		warn  bool
	}{
		{"default", packet.Codec{}, handshakeReply(), false},
		{"none", packet.Codec{Checksum: packet.ChecksumNone{}}, []byte{0x00, 0x01, 0x03, 0x05, '1', '.', '2', '.', '9'}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			conn := &fakeConn{replies: [][]byte{tt.reply}}

			cfg := DefaultConfig()
			cfg.Codec = tt.codec
			cfg.Logger = zerolog.New(&logs)
			cfg.Dial = func(transport.Config, transport.Address) (transport.Conn, error) { return conn, nil }

			s, err := Open(cfg, testAddr)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer s.Close()

			if got := strings.Contains(logs.String(), "no checksum"); got != tt.warn {
				t.Fatalf("warning logged=%v want %v: %s", got, tt.warn, logs.String())
			}
		})
	}
}

func TestReceive_DeadlineCoversWholeFrame(t *testing.T) {
	tests := []struct {
		name    string
		perRead time.Duration
		timeout bool
	}{
		// six one-byte reads
		{"within window", 100 * time.Millisecond, false},
		{"split frame overruns window", 300 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &dripConn{
				fakeConn: fakeConn{replies: [][]byte{handshakeReply(), sealed(0x02, 0x02, 0x03, 0x01, 87)}},
				clock:    time.Unix(1000, 0),
			}
			cfg := DefaultConfig()
			cfg.Transport.ReceiveTimeout = time.Second
			cfg.Now = func() time.Time { return conn.clock }
			cfg.Dial = func(transport.Config, transport.Address) (transport.Conn, error) { return conn, nil }

			s, err := Open(cfg, testAddr)
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer s.Close()

			conn.drip = true
			conn.perRead = tt.perRead
			start := conn.clock

			if err := s.Send(packet.Frame{Opcode: packet.Opcode{Block: 0x02, Function: 0x02}, Operator: packet.OpGet}); err != nil {
				t.Fatalf("send: %v", err)
			}
			f, err := s.Receive()

			if !conn.deadline.Equal(start.Add(time.Second)) {
				t.Fatalf("deadline=%v want %v", conn.deadline, start.Add(time.Second))
			}
			if tt.timeout {
				if !fault.IsKind(err, fault.KindTimeout) {
					t.Fatalf("expected timeout kind, got %v", err)
				}
				return
			}
			if err != nil || len(f.Payload) != 1 || f.Payload[0] != 87 {
				t.Fatalf("receive: %v % x", err, f.Payload)
			}
		})
	}
}
