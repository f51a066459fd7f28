package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/logging"
	"github.com/runnerr0/filmfinder/internal/metrics"
)

// Recorder writes one event per completed search. It never fails: a
// document store write error sends that single event to the journal and
// leaves the probe verdict alone.
type Recorder struct {
	doc     Backend
	file    Backend
	probe   Availability
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewRecorder returns a Recorder. doc may be nil when no document store is
// configured.
func NewRecorder(doc, file Backend, probe Availability, log zerolog.Logger, m *metrics.Metrics) *Recorder {
	return &Recorder{
		doc:     doc,
		file:    file,
		probe:   probe,
		log:     logging.Component(log, "recorder"),
		metrics: m,
		now:     time.Now,
	}
}

// Record stores a search of kind that matched count rows.
func (r *Recorder) Record(ctx context.Context, query string, kind catalog.Kind, count int) {
	defer func() {
		if v := recover(); v != nil {
			r.log.Error().Interface("panic", v).Msg("recording statistics")
		}
	}()

	e := QueryEvent{
		Query:       query,
		Kind:        kind,
		ResultCount: count,
		Timestamp:   r.now().UTC(),
	}

	if r.doc != nil && r.probe != nil && r.probe.Available(ctx) {
		err := r.doc.Append(ctx, e)
		if err == nil {
			r.metrics.StatsWritten(r.doc.Name())
			return
		}
		r.log.Warn().Err(err).Str("query", query).Msg("document store write failed, using journal")
		r.metrics.Fallback("write")
	}

	if err := r.file.Append(ctx, e); err != nil {
		r.log.Warn().Err(err).Str("query", query).Msg("journal write failed")
		return
	}
	r.metrics.StatsWritten(r.file.Name())
}
