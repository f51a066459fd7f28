package stats

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/metrics"
)

type fixedAvailability struct {
	up    bool
	calls int
}

func (f *fixedAvailability) Available(context.Context) bool {
	f.calls++
	return f.up
}

// memoryBackend is an in-memory Backend delegating reads to the file
// aggregation helpers.
type memoryBackend struct {
	name    string
	events  []QueryEvent
	failAll error
}

func (b *memoryBackend) Name() string { return b.name }

func (b *memoryBackend) Append(_ context.Context, e QueryEvent) error {
	if b.failAll != nil {
		return b.failAll
	}
	b.events = append(b.events, e)
	return nil
}

func (b *memoryBackend) Popular(_ context.Context, limit int) ([]QuerySummary, error) {
	if b.failAll != nil {
		return nil, b.failAll
	}
	return popularOf(b.events, limit), nil
}

func (b *memoryBackend) RecentEvents(_ context.Context, limit int) ([]QueryEvent, error) {
	if b.failAll != nil {
		return nil, b.failAll
	}
	return recentEventsOf(b.events, limit), nil
}

func (b *memoryBackend) RecentUnique(_ context.Context, limit int) ([]QuerySummary, error) {
	if b.failAll != nil {
		return nil, b.failAll
	}
	return recentUniqueOf(b.events, limit), nil
}

func (b *memoryBackend) Summary(context.Context) (Summary, error) {
	if b.failAll != nil {
		return Summary{}, b.failAll
	}
	return summaryOf(b.events), nil
}

func TestRecorder_WritesToDocumentStoreWhenAvailable(t *testing.T) {
	doc := &memoryBackend{name: BackendDocument}
	j := newTestJournal(t, 10)
	m := metrics.New()
	r := NewRecorder(doc, NewFileBackend(j), &fixedAvailability{up: true}, zerolog.Nop(), m)
	r.now = func() time.Time { return t0 }

	r.Record(context.Background(), "matrix", catalog.KindTitle, 3)

	require.Len(t, doc.events, 1)
	assert.Equal(t, event("matrix", catalog.KindTitle, 3, t0), doc.events[0])
	assert.Empty(t, j.ReadAll())

	expected := `
# HELP filmfinder_stats_writes_total Query events written, by backend.
# TYPE filmfinder_stats_writes_total counter
filmfinder_stats_writes_total{backend="document"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "filmfinder_stats_writes_total"))
}

func TestRecorder_UsesJournalWhenUnavailable(t *testing.T) {
	doc := &memoryBackend{name: BackendDocument}
	j := newTestJournal(t, 10)
	r := NewRecorder(doc, NewFileBackend(j), &fixedAvailability{up: false}, zerolog.Nop(), nil)

	r.Record(context.Background(), "dune", catalog.KindTitle, 0)

	assert.Empty(t, doc.events)
	got := j.ReadAll()
	require.Len(t, got, 1)
	assert.Equal(t, "dune", got[0].Query)
	assert.Equal(t, 0, got[0].ResultCount)
}

func TestRecorder_FallsBackPerEventOnWriteFailure(t *testing.T) {
	doc := &memoryBackend{name: BackendDocument, failAll: errors.New("write concern error")}
	j := newTestJournal(t, 10)
	probe := &fixedAvailability{up: true}
	m := metrics.New()
	r := NewRecorder(doc, NewFileBackend(j), probe, zerolog.Nop(), m)

	r.Record(context.Background(), "matrix", catalog.KindTitle, 3)
	doc.failAll = nil
	r.Record(context.Background(), "dune", catalog.KindTitle, 2)

	assert.Equal(t, []string{"matrix"}, queries(j.ReadAll()))
	assert.Equal(t, []string{"dune"}, queries(doc.events), "probe verdict untouched, next write goes to the document store")
	assert.Equal(t, 2, probe.calls)

	expected := `
# HELP filmfinder_stats_fallbacks_total Statistics operations served by the file journal after a document store failure.
# TYPE filmfinder_stats_fallbacks_total counter
filmfinder_stats_fallbacks_total{reason="write"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "filmfinder_stats_fallbacks_total"))
}

func TestRecorder_WithoutDocumentBackend(t *testing.T) {
	j := newTestJournal(t, 10)
	probe := &fixedAvailability{up: true}
	r := NewRecorder(nil, NewFileBackend(j), probe, zerolog.Nop(), nil)

	r.Record(context.Background(), "alien", catalog.KindTitle, 1)

	assert.Equal(t, []string{"alien"}, queries(j.ReadAll()))
	assert.Equal(t, 0, probe.calls)
}

func TestRecorder_NeverPanics(t *testing.T) {
	file := &memoryBackend{name: BackendFile, failAll: errors.New("disk full")}
	r := NewRecorder(nil, file, nil, zerolog.Nop(), nil)
	assert.NotPanics(t, func() {
		r.Record(context.Background(), "x", catalog.KindTitle, 1)
	})

	var nilFile *FileBackend
	r = NewRecorder(nil, nilFile, nil, zerolog.Nop(), nil)
	assert.NotPanics(t, func() {
		r.Record(context.Background(), "x", catalog.KindTitle, 1)
	})
}
