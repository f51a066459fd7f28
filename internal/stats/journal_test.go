package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/filmfinder/internal/catalog"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestJournal(t *testing.T, capacity int) *Journal {
	t.Helper()
	return NewJournal(filepath.Join(t.TempDir(), "search_logs.json"), capacity, zerolog.Nop())
}

func event(query string, kind catalog.Kind, count int, at time.Time) QueryEvent {
	return QueryEvent{Query: query, Kind: kind, ResultCount: count, Timestamp: at}
}

func queries(events []QueryEvent) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.Query)
	}
	return out
}

func TestJournal_AppendReadAll(t *testing.T) {
	j := newTestJournal(t, 10)

	j.Append(event("matrix", catalog.KindTitle, 3, t0))
	j.Append(event("genre:Comedy, years:2005-2010", catalog.KindGenreYear, 0, t0.Add(time.Minute)))

	got := j.ReadAll()
	require.Len(t, got, 2)
	assert.Equal(t, event("matrix", catalog.KindTitle, 3, t0), got[0])
	assert.Equal(t, catalog.KindGenreYear, got[1].Kind)
	assert.Equal(t, 0, got[1].ResultCount)
	assert.Equal(t, 2, j.Len())
}

func TestJournal_FileFormat(t *testing.T) {
	j := newTestJournal(t, 10)
	j.Append(event("Матрица & <co>", catalog.KindTitle, 1, t0))

	data, err := os.ReadFile(j.Path())
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `"query": "Матрица & <co>"`)
	assert.Contains(t, text, `"search_type": "title"`)
	assert.Contains(t, text, `"timestamp": "2024-05-01T10:00:00Z"`)
	assert.Contains(t, text, `"results_count": 1`)
	assert.Contains(t, text, "\n  {", "entries are indented")
}

func TestJournal_ZeroTimestampUsesClock(t *testing.T) {
	j := newTestJournal(t, 10)
	j.now = func() time.Time { return t0.In(time.FixedZone("MSK", 3*3600)) }

	j.Append(QueryEvent{Query: "dune", Kind: catalog.KindTitle})

	got := j.ReadAll()
	require.Len(t, got, 1)
	assert.True(t, got[0].Timestamp.Equal(t0))
	assert.Equal(t, time.UTC, got[0].Timestamp.Location())
}

func TestJournal_EvictsOldest(t *testing.T) {
	j := newTestJournal(t, 3)
	for i := 0; i < 5; i++ {
		j.Append(event(fmt.Sprintf("q%d", i), catalog.KindTitle, i, t0.Add(time.Duration(i)*time.Second)))
	}

	assert.Equal(t, []string{"q2", "q3", "q4"}, queries(j.ReadAll()))
}

func TestJournal_FullJournalDropsOneOnAppend(t *testing.T) {
	j := newTestJournal(t, 1000)

	entries := make([]journalEntry, 1000)
	for i := range entries {
		entries[i] = journalEntry{
			Query:      fmt.Sprintf("q%04d", i),
			SearchType: "title",
			Timestamp:  t0.Add(time.Duration(i) * time.Second).Format(time.RFC3339),
		}
	}
	require.NoError(t, j.write(entries))

	j.Append(event("newest", catalog.KindActor, 2, t0.Add(time.Hour)))

	got := j.ReadAll()
	require.Len(t, got, 1000)
	assert.Equal(t, "q0001", got[0].Query)
	assert.Equal(t, "newest", got[999].Query)
}

func TestJournal_MissingFileIsEmpty(t *testing.T) {
	j := newTestJournal(t, 10)
	assert.Empty(t, j.ReadAll())
	assert.NotNil(t, j.ReadAll())
	assert.Equal(t, 0, j.Len())
}

func TestJournal_CorruptFileIsEmptyAndOverwritten(t *testing.T) {
	j := newTestJournal(t, 10)
	require.NoError(t, os.WriteFile(j.Path(), []byte(`[{"query": "broken"`), 0o644))

	assert.Empty(t, j.ReadAll())

	j.Append(event("dune", catalog.KindTitle, 2, t0))
	assert.Equal(t, []string{"dune"}, queries(j.ReadAll()))
}

func TestJournal_EmptyFileIsEmpty(t *testing.T) {
	j := newTestJournal(t, 10)
	require.NoError(t, os.WriteFile(j.Path(), nil, 0o644))
	assert.Empty(t, j.ReadAll())
}

func TestJournal_LegacyEntries(t *testing.T) {
	j := newTestJournal(t, 10)
	legacy := `[
  {"query": "academy", "search_type": "keyword", "timestamp": "2024-05-01T10:00:00.123456", "results_count": 4},
  {"query": "penelope", "search_type": "actor", "timestamp": "not a time", "results_count": 2}
]`
	require.NoError(t, os.WriteFile(j.Path(), []byte(legacy), 0o644))

	got := j.ReadAll()
	require.Len(t, got, 2)
	assert.Equal(t, catalog.KindTitle, got[0].Kind)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 123456000, time.UTC), got[0].Timestamp)
	assert.True(t, got[1].Timestamp.IsZero())
}

func TestJournal_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "log.json")
	j := NewJournal(path, 10, zerolog.Nop())

	j.Append(event("dune", catalog.KindTitle, 1, t0))

	_, err := os.Stat(path)
	require.NoError(t, err)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files are cleaned up")
}

func TestJournal_FileIsWorldReadable(t *testing.T) {
	j := newTestJournal(t, 10)
	j.Append(event("dune", catalog.KindTitle, 1, t0))

	info, err := os.Stat(j.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestJournal_UnwritableDirectoryIsSwallowed(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	j := NewJournal(filepath.Join(blocker, "log.json"), 10, zerolog.Nop())
	assert.NotPanics(t, func() { j.Append(event("dune", catalog.KindTitle, 1, t0)) })
	assert.Empty(t, j.ReadAll())
}

func TestJournal_DefaultCapacity(t *testing.T) {
	j := NewJournal("unused.json", 0, zerolog.Nop())
	assert.Equal(t, DefaultCapacity, j.Capacity())
}

func TestJournal_Prune(t *testing.T) {
	j := newTestJournal(t, 10)
	entries := []journalEntry{
		{Query: "old", SearchType: "title", Timestamp: t0.Add(-48 * time.Hour).Format(time.RFC3339)},
		{Query: "undated", SearchType: "title", Timestamp: "yesterday-ish"},
		{Query: "new", SearchType: "title", Timestamp: t0.Format(time.RFC3339)},
	}
	require.NoError(t, j.write(entries))

	cut := t0.Add(-24 * time.Hour)
	assert.Equal(t, 1, j.CountBefore(cut))

	removed, err := j.Prune(cut)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"undated", "new"}, queries(j.ReadAll()))

	removed, err = j.Prune(cut)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestJournal_PruneCorruptFails(t *testing.T) {
	j := newTestJournal(t, 10)
	require.NoError(t, os.WriteFile(j.Path(), []byte("{"), 0o644))

	_, err := j.Prune(t0)
	assert.Error(t, err)
}

func TestJournal_Clear(t *testing.T) {
	j := newTestJournal(t, 10)
	require.NoError(t, j.Clear(), "clearing a missing journal")

	j.Append(event("dune", catalog.KindTitle, 1, t0))
	require.NoError(t, j.Clear())

	_, err := os.Stat(j.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestJournalEntry_JSONNames(t *testing.T) {
	data, err := json.Marshal(journalEntry{Query: "q", SearchType: "actor", Timestamp: "ts", ResultsCount: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"query":"q","search_type":"actor","timestamp":"ts","results_count":7}`, string(data))
}
