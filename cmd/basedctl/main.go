// cmd/basedctl/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/basedctl/internal/bluez"
	"github.com/tamzrod/basedctl/internal/config"
	"github.com/tamzrod/basedctl/internal/device"
	"github.com/tamzrod/basedctl/internal/logging"
	"github.com/tamzrod/basedctl/internal/packet"
	"github.com/tamzrod/basedctl/internal/poller"
	"github.com/tamzrod/basedctl/internal/session"
	"github.com/tamzrod/basedctl/internal/transport"
	"github.com/tamzrod/basedctl/internal/writer"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, transport.Open)
	stop()
	os.Exit(code)
}

// invocation is the state shared by the actions of one run.
type invocation struct {
	ctx     context.Context
	cfg     *config.Config
	log     zerolog.Logger
	link    *link
	console *writer.Console
	out     io.Writer
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, dial transport.Dialer) int {
	cl, err := parseArgs(args)
	if err != nil {
		return fail(stderr, err, true)
	}
	if cl.help {
		usage(stdout)
		return 0
	}

	addr, err := targetAddress(cl.positional)
	if err != nil {
		return fail(stderr, err, true)
	}
	actions, err := buildActions(cl.options)
	if err != nil {
		return fail(stderr, err, true)
	}

	// --------------------
	// Load + validate profile
	// --------------------

	cfg, err := config.LoadOrDefault(cl.configPath)
	if err != nil {
		return fail(stderr, fmt.Errorf("config load failed: %w", err), false)
	}
	if err := config.Validate(cfg); err != nil {
		return fail(stderr, fmt.Errorf("config validation failed: %w", err), false)
	}
	config.Normalize(cfg)

	log := logging.NewWriter(stderr, cfg.Log.Level)

	if len(actions) == 0 {
		log.Debug().Str("address", addr.String()).Msg("nothing to do")
		return 0
	}

	sc, opts, err := sessionSetup(cfg, dial, log)
	if err != nil {
		return fail(stderr, fmt.Errorf("config validation failed: %w", err), false)
	}

	if cfg.Bluez.Preflight {
		if err := preflight(cfg.Bluez.Adapter, addr); err != nil {
			return fail(stderr, err, false)
		}
	}

	inv := &invocation{
		ctx:     ctx,
		cfg:     cfg,
		log:     log,
		link:    &link{cfg: sc, addr: addr, opts: opts},
		console: writer.NewConsole(stdout),
		out:     stdout,
	}
	defer inv.link.close()

	// Options run in command line order; the first failure ends the run.
	for _, a := range actions {
		if err := ctx.Err(); err != nil {
			return fail(stderr, err, false)
		}
		log.Debug().Str("action", a.name).Msg("run")
		if err := a.run(inv); err != nil {
			return fail(stderr, err, false)
		}
	}
	return 0
}

// sessionSetup turns a normalized profile into the session config and the
// device client options.
func sessionSetup(cfg *config.Config, dial transport.Dialer, log zerolog.Logger) (session.Config, []device.Option, error) {
	sc := session.DefaultConfig()
	sc.Dial = dial
	sc.Logger = log.With().Str("component", "session").Logger()

	d := cfg.Device
	sc.Transport = transport.Config{
		Kind:           transport.Kind(d.Transport),
		Channel:        uint8(d.Channel),
		TTYPath:        d.TTYPath,
		BaudRate:       d.BaudRate,
		SendTimeout:    time.Duration(d.SendTimeoutMs) * time.Millisecond,
		ReceiveTimeout: time.Duration(d.ReceiveTimeoutMs) * time.Millisecond,
	}

	cs, err := packet.ChecksumByName(cfg.Protocol.Checksum)
	if err != nil {
		return sc, nil, err
	}
	sc.Codec = packet.Codec{Checksum: cs, MaxPayload: cfg.Protocol.MaxPayload}
	sc.Handshake = opcodeOf(cfg.Protocol.Handshake)

	overrides := make(map[string]packet.Opcode, len(cfg.Protocol.Opcodes))
	for name, v := range cfg.Protocol.Opcodes {
		overrides[name] = opcodeOf(v)
	}
	cat, err := device.NewCatalog(overrides)
	if err != nil {
		return sc, nil, err
	}

	opts := []device.Option{
		device.WithCatalog(cat),
		device.WithLogger(log.With().Str("component", "device").Logger()),
	}
	if ids := cfg.Capabilities.NoiseCancelling; len(ids) > 0 {
		models := make([]uint16, len(ids))
		for i, id := range ids {
			models[i] = uint16(id)
		}
		opts = append(opts, device.WithCapabilities(device.NewCapabilities(models)))
	}
	return sc, opts, nil
}

// opcodeOf reads a validated [block, function] pair.
func opcodeOf(v []int) packet.Opcode {
	return packet.Opcode{Block: byte(v[0]), Function: byte(v[1])}
}

func preflight(adapter string, addr transport.Address) error {
	bus, err := bluez.Connect()
	if err != nil {
		return err
	}
	defer bus.Close()
	return bluez.Preflight(bus, adapter, addr)
}

// ---- actions needing more than one query ----

func (inv *invocation) client() (*device.Client, error) {
	_, c, err := inv.link.open()
	return c, err
}

// info runs the full read-only query set with retries and delivers the
// result to the console and, when configured, the metrics textfile.
func (inv *invocation) info() error {
	factory := func() (poller.Client, func() error, error) {
		_, c, err := inv.link.open()
		if err != nil {
			return nil, nil, err
		}
		return c, inv.link.reset, nil
	}

	p, err := poller.Build(inv.link.addr.String(), inv.cfg.Poll, factory, inv.log,
		poller.WithObserver(func(sr poller.StepResult) {
			ev := inv.log.Debug().Str("step", string(sr.Step)).Int("attempts", sr.Attempts)
			if sr.Err != nil {
				ev = ev.AnErr("last_error", sr.Err)
			}
			ev.Msg("step done")
		}),
	)
	if err != nil {
		return err
	}

	res := p.PollOnce(inv.ctx)
	if err := writer.Build(inv.cfg.Metrics, inv.out).Write(res); err != nil {
		inv.log.Error().Err(err).Msg("writer error")
	}
	return res.Err
}

// sendPacket writes caller supplied header and payload bytes, checksum
// added, and prints whatever single frame comes back.
func (inv *invocation) sendPacket(raw []byte) error {
	s, _, err := inv.link.open()
	if err != nil {
		return err
	}
	codec := inv.link.cfg.Codec
	frame, err := codec.Seal(raw)
	if err != nil {
		return err
	}
	if err := s.SendRaw(frame); err != nil {
		return err
	}
	resp, err := s.ReceiveRaw()
	if err != nil {
		return err
	}
	return inv.console.Packet(resp)
}

// ---- exit codes ----

// fail reports err on stderr and maps it to the exit code.
func fail(stderr io.Writer, err error, withUsage bool) int {
	fmt.Fprintf(stderr, "%s: %v\n", programName, err)
	code := exitCode(err)
	if withUsage {
		usage(stderr)
	}
	return code
}

// exitCode extracts the exit code class carried by err. An error that does
// not expose a code, a cancelled context for instance, returns 1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ Code() uint16 }
	if errors.As(err, &coded) {
		return int(coded.Code())
	}
	return 1
}
