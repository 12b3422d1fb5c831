// internal/poller/builder.go
package poller

import (
	"time"

	"github.com/rs/zerolog"

	cfg "github.com/tamzrod/basedctl/internal/config"
)

// Build constructs a Poller from the poll section of a profile.
// Client lifecycle belongs to factory: the poller asks it for a client
// whenever it holds none, and releases a client once its transport failed.
func Build(address string, pc cfg.PollConfig, factory Factory, log zerolog.Logger, opts ...Option) (*Poller, error) {
	return New(
		Config{
			Address:     address,
			Interval:    time.Duration(pc.IntervalMs) * time.Millisecond,
			MaxAttempts: pc.MaxAttempts,
		},
		factory,
		append([]Option{WithLogger(log.With().Str("component", "poller").Logger())}, opts...)...,
	)
}
