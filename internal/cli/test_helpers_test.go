package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/config"
	"github.com/runnerr0/filmfinder/internal/stats"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

var testFilms = []catalog.Film{
	{Title: "The Matrix", Description: "A hacker learns that the world he lives in is a simulation run by machines", Year: 1999, Genres: []string{"Sci-Fi"}, Actors: []string{"Keanu Reeves", "Carrie-Anne Moss"}},
	{Title: "The Matrix Reloaded", Year: 2003, Genres: []string{"Sci-Fi"}, Actors: []string{"Keanu Reeves"}},
	{Title: "The Matrix Revolutions", Year: 2003, Genres: []string{"Sci-Fi"}, Actors: []string{"Keanu Reeves"}},
	{Title: "Amelie", Year: 2001, Genres: []string{"Comedy"}, Actors: []string{"Audrey Tautou"}},
	{Title: "Dune", Year: 2021, Genres: []string{"Sci-Fi"}, Actors: []string{"Timothee Chalamet"}},
}

// testConfig returns a config with a SQLite catalog and journal under dir
// and no document store.
func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Catalog.Driver = "sqlite3"
	cfg.Catalog.Path = filepath.Join(dir, "catalog.db")
	cfg.Stats.MongoURI = ""
	cfg.Stats.MongoHost = ""
	cfg.Stats.JournalPath = filepath.Join(dir, "search_logs.json")
	cfg.Search.PageSize = 2
	return cfg
}

// newTestAppWith wires an app over cfg reading input and writing to the
// returned buffer.
func newTestAppWith(t *testing.T, cfg *config.Config, input string) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := newApp(cfg, zerolog.Nop(), nil, strings.NewReader(input), &out, false)
	t.Cleanup(func() { _ = a.close() })
	return a, &out
}

// newTestApp returns an app over a catalog seeded with testFilms.
func newTestApp(t *testing.T, input string) (*app, *bytes.Buffer) {
	t.Helper()
	a, out := newTestAppWith(t, testConfig(t.TempDir()), input)

	ctx := context.Background()
	db, err := a.conns.Relational(ctx)
	require.NoError(t, err)
	n, err := catalog.Import(ctx, db, testFilms)
	require.NoError(t, err)
	require.Equal(t, len(testFilms), n)
	return a, out
}

// seedJournal appends events with the given ages relative to now.
func seedJournal(t *testing.T, j *stats.Journal, query string, kind catalog.Kind, ages ...time.Duration) {
	t.Helper()
	now := time.Now()
	for _, age := range ages {
		j.Append(stats.QueryEvent{Query: query, Kind: kind, ResultCount: 1, Timestamp: now.Add(-age)})
	}
}
