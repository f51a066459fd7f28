package stats

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/logging"
	"github.com/runnerr0/filmfinder/internal/metrics"
)

// Reader answers statistics queries. Each read goes to the document store
// when the probe allows it and falls back to the journal when that read
// fails. Reads never return errors; missing data is an empty result.
type Reader struct {
	doc     Backend
	file    Backend
	probe   Availability
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewReader returns a Reader. doc may be nil.
func NewReader(doc, file Backend, probe Availability, log zerolog.Logger, m *metrics.Metrics) *Reader {
	return &Reader{
		doc:     doc,
		file:    file,
		probe:   probe,
		log:     logging.Component(log, "reader"),
		metrics: m,
	}
}

// Popular returns up to limit queries ordered by how often they were run.
func (r *Reader) Popular(ctx context.Context, limit int) []QuerySummary {
	if limit <= 0 {
		return []QuerySummary{}
	}
	return read(ctx, r, "popular", func(b Backend) ([]QuerySummary, error) {
		return b.Popular(ctx, limit)
	})
}

// RecentEvents returns up to limit raw events, newest first. Repeated
// queries appear once per search.
func (r *Reader) RecentEvents(ctx context.Context, limit int) []QueryEvent {
	if limit <= 0 {
		return []QueryEvent{}
	}
	return read(ctx, r, "recent events", func(b Backend) ([]QueryEvent, error) {
		return b.RecentEvents(ctx, limit)
	})
}

// RecentUniqueQueries returns up to limit distinct queries ordered by when
// they were last run.
func (r *Reader) RecentUniqueQueries(ctx context.Context, limit int) []QuerySummary {
	if limit <= 0 {
		return []QuerySummary{}
	}
	return read(ctx, r, "recent queries", func(b Backend) ([]QuerySummary, error) {
		return b.RecentUnique(ctx, limit)
	})
}

// Summary counts all recorded searches per kind.
func (r *Reader) Summary(ctx context.Context) Summary {
	one, _ := readOne(ctx, r, "summary", func(b Backend) (Summary, error) {
		return b.Summary(ctx)
	})
	if one.ByKind == nil {
		one.ByKind = map[catalog.Kind]int{}
	}
	return one
}

// Source names the backend reads would use right now.
func (r *Reader) Source(ctx context.Context) string {
	if r.useDocument(ctx) {
		return r.doc.Name()
	}
	return r.file.Name()
}

func (r *Reader) useDocument(ctx context.Context) bool {
	return r.doc != nil && r.probe != nil && r.probe.Available(ctx)
}

func read[T any](ctx context.Context, r *Reader, op string, fn func(Backend) ([]T, error)) []T {
	out, _ := readOne(ctx, r, op, fn)
	if out == nil {
		return []T{}
	}
	return out
}

// readOne runs fn against the preferred backend, falling back to the
// journal. ok is false when both failed.
func readOne[T any](ctx context.Context, r *Reader, op string, fn func(Backend) (T, error)) (T, bool) {
	if r.useDocument(ctx) {
		v, err := fn(r.doc)
		if err == nil {
			return v, true
		}
		r.log.Warn().Err(err).Str("op", op).Msg("document store read failed, using journal")
		r.metrics.Fallback("read")
	}
	v, err := fn(r.file)
	if err != nil {
		r.log.Warn().Err(err).Str("op", op).Msg("journal read failed")
		var zero T
		return zero, false
	}
	return v, true
}
