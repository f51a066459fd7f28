package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/connection"
	"github.com/runnerr0/filmfinder/internal/logging"
	"github.com/runnerr0/filmfinder/internal/metrics"
)

// Availability reports whether the document store should be used.
type Availability interface {
	Available(ctx context.Context) bool
}

// CheckFunc reports whether the document store is reachable.
type CheckFunc func(ctx context.Context) error

// MongoCheck connects a throwaway client to uri, pings it and disconnects.
// It never touches the connection manager's cached client.
func MongoCheck(uri string, timeout time.Duration) CheckFunc {
	return func(ctx context.Context) error {
		client, err := connection.ConnectMongo(ctx, uri, timeout)
		if err != nil {
			return err
		}
		return client.Disconnect(context.Background())
	}
}

// Probe memoizes the document store reachability verdict. With a zero
// RecheckInterval the first verdict holds for the life of the process;
// otherwise a verdict older than the interval is probed again.
type Probe struct {
	RecheckInterval time.Duration

	check   CheckFunc
	timeout time.Duration
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	checked   bool
	available bool
	checkedAt time.Time
}

// NewProbe returns a probe that runs check with the given timeout.
func NewProbe(check CheckFunc, timeout, recheck time.Duration, log zerolog.Logger, m *metrics.Metrics) *Probe {
	return &Probe{
		RecheckInterval: recheck,
		check:           check,
		timeout:         timeout,
		log:             logging.Component(log, "probe"),
		metrics:         m,
		now:             time.Now,
	}
}

// Available returns the memoized verdict, probing when there is none or it
// has expired.
func (p *Probe) Available(ctx context.Context) bool {
	if p.checked && !p.expired() {
		return p.available
	}

	err := p.run(ctx)
	up := err == nil
	switch {
	case !up && (!p.checked || p.available):
		p.log.Warn().Err(err).Msg("document store unavailable, statistics go to the local journal")
	case up && p.checked && !p.available:
		p.log.Info().Msg("document store reachable again")
	default:
		p.log.Debug().Bool("available", up).Msg("document store probed")
	}

	p.checked = true
	p.available = up
	p.checkedAt = p.now()
	p.metrics.DocumentStoreAvailable(up)
	return up
}

func (p *Probe) expired() bool {
	return p.RecheckInterval > 0 && p.now().Sub(p.checkedAt) >= p.RecheckInterval
}

func (p *Probe) run(ctx context.Context) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	return p.check(ctx)
}
