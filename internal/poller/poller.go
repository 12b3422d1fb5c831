// internal/poller/poller.go
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tamzrod/basedctl/internal/device"
)

// Client abstracts the read-only queries needed by the poller.
type Client interface {
	DeviceID() (device.Identity, error)
	SerialNumber() (string, error)
	FirmwareVersion() (string, error)
	BatteryLevel() (int, error)
	DeviceStatus() (device.Status, error)
	PairedDevices() (device.PairedDevices, error)
}

// Factory opens a ready client. ONE attempt per call.
// The returned func releases whatever the client holds.
type Factory func() (Client, func() error, error)

// Config is the minimal runtime config the poller needs.
type Config struct {
	Address  string
	Interval time.Duration
	// MaxAttempts bounds the tries per step. 0 retries until ctx is done.
	MaxAttempts int
}

type Option func(*Poller)

// WithSleep replaces the wait between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(p *Poller) { p.sleep = fn }
}

func WithClock(fn func() time.Time) Option {
	return func(p *Poller) { p.now = fn }
}

func WithLogger(l zerolog.Logger) Option {
	return func(p *Poller) { p.log = l }
}

// WithObserver is called after every attempt, failed or not.
func WithObserver(fn func(StepResult)) Option {
	return func(p *Poller) { p.observe = fn }
}

// Poller runs the info query set in fixed order.
// A transient failure discards the client; the next attempt reopens it
// through the factory.
type Poller struct {
	cfg     Config
	factory Factory

	client  Client
	release func() error

	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
	log     zerolog.Logger
	observe func(StepResult)
}

// New creates a poller with immutable config.
func New(cfg Config, factory Factory, opts ...Option) (*Poller, error) {
	if factory == nil {
		return nil, errors.New("poller: client factory required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if cfg.MaxAttempts < 0 {
		return nil, errors.New("poller: max attempts must be >= 0")
	}
	p := &Poller{
		cfg:     cfg,
		factory: factory,
		sleep:   sleepCtx,
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// PollOnce performs exactly one info run.
// All-or-nothing: Info is only filled when every step succeeded.
func (p *Poller) PollOnce(ctx context.Context) PollResult {
	res := PollResult{
		Address: p.cfg.Address,
		At:      p.now(),
	}

	var info Info
	for _, step := range Steps {
		sr := p.runStep(ctx, step, &info)
		res.Steps = append(res.Steps, sr)
		if sr.Err != nil {
			res.Err = sr.Err
			res.RawErrorCode = errorCode(sr.Err)
			return res
		}
	}

	// Commit only if all steps succeeded
	res.Info = info
	return res
}

// Close releases a client the poller still holds.
func (p *Poller) Close() error {
	return p.discard()
}

// attempt runs one try of step, opening a client first when needed.
func (p *Poller) attempt(step Step, info *Info) error {
	if p.client == nil {
		c, release, err := p.factory()
		if err != nil {
			return err
		}
		p.client, p.release = c, release
	}

	var err error
	switch step {
	case StepIdentity:
		info.Identity, err = p.client.DeviceID()
	case StepSerial:
		info.Serial, err = p.client.SerialNumber()
	case StepFirmware:
		info.Firmware, err = p.client.FirmwareVersion()
	case StepBattery:
		info.Battery, err = p.client.BatteryLevel()
	case StepStatus:
		info.Status, err = p.client.DeviceStatus()
	case StepPaired:
		info.Paired, err = p.client.PairedDevices()
	default:
		err = fmt.Errorf("poller: unsupported step %q", step)
	}
	return err
}

func (p *Poller) discard() error {
	if p.client == nil {
		return nil
	}
	var err error
	if p.release != nil {
		err = p.release()
	}
	p.client, p.release = nil, nil
	return err
}

// errorCode extracts the exit code class carried by err.
func errorCode(err error) uint16 {
	if err == nil {
		return 0
	}
	var coded interface{ Code() uint16 }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return 1
}
