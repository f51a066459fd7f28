package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/config"
)

func TestStatus_Human(t *testing.T) {
	a, out := newTestApp(t, "")
	seedJournal(t, a.journal, "dune", catalog.KindTitle, time.Hour, time.Minute)

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev"}
	require.NoError(t, cmd.executeWith(a))

	output := out.String()
	assert.Contains(t, output, "filmfinder status")
	assert.Contains(t, output, "Version:        dev")
	assert.Contains(t, output, "Catalog:        sqlite3 "+a.cfg.Catalog.Path)
	assert.Contains(t, output, "Films:          5")
	assert.Contains(t, output, "Document store: not configured")
	assert.Contains(t, output, "Statistics to:  local journal")
	assert.Contains(t, output, "Entries:        2 of 1,000")
}

func TestStatus_JSON(t *testing.T) {
	a, out := newTestApp(t, "")
	a.json = true
	seedJournal(t, a.journal, "dune", catalog.KindTitle, time.Hour)

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "1.0.0"}
	require.NoError(t, cmd.executeWith(a))

	var got statusJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "1.0.0", got.Version)
	assert.True(t, got.CatalogReachable)
	assert.Equal(t, 5, got.Films)
	assert.Equal(t, docNotConfigured, got.DocumentState)
	assert.Equal(t, "file", got.StatsBackend)
	assert.Equal(t, 1, got.JournalEntries)
	assert.Equal(t, 1000, got.JournalCapacity)
	assert.Positive(t, got.JournalSizeBytes)
	assert.Equal(t, 2, got.PageSize)
}

func TestStatus_UnreachableCatalog(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing", "catalog.db")
	a, out := newTestAppWith(t, cfg, "")
	a.json = true

	require.NoError(t, (&StatusCommand{globals: &GlobalFlags{JSON: true}}).executeWith(a))

	var got statusJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.False(t, got.CatalogReachable)
	assert.Contains(t, got.CatalogError, "connect to relational store")
	assert.Zero(t, got.JournalSizeBytes, "no journal written yet")
}

func TestStatus_UnreachableDocumentStore(t *testing.T) {
	cfg := testConfig(t.TempDir())
	cfg.Stats.MongoURI = "mongodb://127.0.0.1:1/"
	cfg.Stats.ProbeTimeout = 200 * time.Millisecond
	cfg.Stats.OperationTimeout = 200 * time.Millisecond
	a, out := newTestAppWith(t, cfg, "")

	require.NoError(t, (&StatusCommand{globals: &GlobalFlags{}}).executeWith(a))

	output := out.String()
	assert.Contains(t, output, "Document store: mongodb://127.0.0.1:1/ (unavailable)")
	assert.Contains(t, output, "Statistics to:  local journal")
}

func TestCatalogTarget(t *testing.T) {
	assert.Equal(t, "/data/films.db", catalogTarget(config.CatalogConfig{Driver: "sqlite3", Path: "/data/films.db"}))
	assert.Equal(t, "root@localhost:3306/films_database", catalogTarget(config.DefaultConfig().Catalog))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
	assert.Equal(t, "1.0 GB", formatBytes(1<<30))
}

func TestFormatNumber(t *testing.T) {
	cases := map[int64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		123456:  "123,456",
		1234567: "1,234,567",
		-1234:   "-1,234",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatNumber(in), "formatNumber(%d)", in)
	}
}
