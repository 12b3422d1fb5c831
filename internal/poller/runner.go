// internal/poller/runner.go
package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/tamzrod/basedctl/internal/fault"
)

// runStep repeats one step until it succeeds, fails for good, runs out of
// attempts or ctx is done. No overlap: one attempt at a time.
func (p *Poller) runStep(ctx context.Context, step Step, info *Info) StepResult {
	sr := StepResult{Step: step}

	for {
		if err := ctx.Err(); err != nil {
			sr.Err = err
			return sr
		}

		sr.Attempts++
		err := p.attempt(step, info)
		sr.At = p.now()
		sr.Err = err
		if p.observe != nil {
			p.observe(sr)
		}
		if err == nil {
			return sr
		}

		if !fault.Transient(err) {
			return sr
		}
		// transport is suspect: reopen on the next attempt
		_ = p.discard()

		if p.cfg.MaxAttempts > 0 && sr.Attempts >= p.cfg.MaxAttempts {
			sr.Err = fmt.Errorf("%s: giving up after %d attempts: %w", step, sr.Attempts, err)
			return sr
		}

		p.log.Warn().
			Err(err).
			Str("step", string(step)).
			Int("attempt", sr.Attempts).
			Dur("retry_in", p.cfg.Interval).
			Msg("query failed, retrying")

		if err := p.sleep(ctx, p.cfg.Interval); err != nil {
			sr.Err = err
			return sr
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
