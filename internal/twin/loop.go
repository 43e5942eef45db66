package twin

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/domain"
	"github.com/ANIKETSHETTY47/virtual-home-twin/internal/metrics"
)

// Sink receives every reading produced by the loop.
type Sink interface {
	Name() string
	Publish(ctx context.Context, r domain.Reading) error
}

// Loop drives a session at a fixed refresh interval.
type Loop struct {
	session  *Session
	interval time.Duration
	now      func() time.Time
	sinks    []Sink
}

func NewLoop(session *Session, interval time.Duration, sinks ...Sink) *Loop {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Loop{session: session, interval: interval, now: time.Now, sinks: sinks}
}

// WithClock replaces the wall clock used to stamp readings.
func (l *Loop) WithClock(now func() time.Time) *Loop {
	l.now = now
	return l
}

// Run performs one cycle immediately and then one per interval until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	t := time.NewTicker(l.interval)
	defer t.Stop()
	log.Info().Dur("interval", l.interval).Int("sinks", len(l.sinks)).Msg("refresh loop started")

	l.Cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("refresh loop stopped")
			return ctx.Err()
		case <-t.C:
			l.Cycle(ctx)
		}
	}
}

// Cycle generates one reading and hands it to every sink. Sink failures are
// logged and do not abort the cycle.
func (l *Loop) Cycle(ctx context.Context) domain.Reading {
	r := l.session.Step(l.now())
	metrics.ObserveReading(r, l.session.Len())

	ev := log.Debug()
	if r.IsFault() {
		ev = log.Warn()
	}
	ev.Str("id", r.ID).Float64("total_load", r.TotalLoad).Float64("price", r.Price).
		Bool("occupancy", r.Occupancy).Str("status", string(r.FaultStatus)).Msg("reading generated")

	for _, s := range l.sinks {
		if err := s.Publish(ctx, r); err != nil {
			metrics.SinkError(s.Name())
			log.Error().Err(err).Str("sink", s.Name()).Msg("publish failed")
		}
	}
	return r
}
