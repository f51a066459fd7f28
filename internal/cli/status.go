package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/runnerr0/filmfinder/internal/config"
	"github.com/runnerr0/filmfinder/internal/stats"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version          string `json:"version"`
	CatalogDriver    string `json:"catalog_driver"`
	CatalogTarget    string `json:"catalog_target"`
	CatalogReachable bool   `json:"catalog_reachable"`
	CatalogError     string `json:"catalog_error,omitempty"`
	Films            int    `json:"films"`
	DocumentStore    string `json:"document_store"`
	DocumentState    string `json:"document_store_state"`
	StatsBackend     string `json:"stats_backend"`
	JournalPath      string `json:"journal_path"`
	JournalEntries   int    `json:"journal_entries"`
	JournalCapacity  int    `json:"journal_capacity"`
	JournalSizeBytes int64  `json:"journal_size_bytes"`
	PageSize         int    `json:"page_size"`
}

// Document store states reported by status.
const (
	docNotConfigured = "not configured"
	docAvailable     = "available"
	docUnavailable   = "unavailable"
)

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWith)
}

func (c *StatusCommand) executeWith(a *app) error {
	ctx := context.Background()

	out := statusJSON{
		Version:         c.version,
		CatalogDriver:   a.cfg.Catalog.Driver,
		CatalogTarget:   catalogTarget(a.cfg.Catalog),
		DocumentState:   docNotConfigured,
		JournalPath:     a.journal.Path(),
		JournalEntries:  a.journal.Len(),
		JournalCapacity: a.journal.Capacity(),
		PageSize:        a.cfg.Search.PageSize,
	}

	films, err := a.catalog.FilmCount(ctx)
	if err != nil {
		out.CatalogError = err.Error()
	} else {
		out.CatalogReachable = true
		out.Films = films
	}

	if a.probe != nil {
		out.DocumentStore = a.cfg.Stats.Redacted()
		out.DocumentState = docUnavailable
		if a.probe.Available(ctx) {
			out.DocumentState = docAvailable
		}
	}
	out.StatsBackend = a.reader.Source(ctx)

	if info, err := os.Stat(a.journal.Path()); err == nil {
		out.JournalSizeBytes = info.Size()
	}

	if a.json {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	c.printHuman(a, out)
	return nil
}

func (c *StatusCommand) printHuman(a *app, s statusJSON) {
	w := a.out
	fmt.Fprintln(w, "filmfinder status")
	fmt.Fprintln(w, "=================")
	fmt.Fprintf(w, "Version:        %s\n", s.Version)
	fmt.Fprintf(w, "Catalog:        %s %s\n", s.CatalogDriver, s.CatalogTarget)
	if s.CatalogReachable {
		fmt.Fprintf(w, "Films:          %s\n", formatNumber(int64(s.Films)))
	} else {
		fmt.Fprintf(w, "Films:          unreachable (%s)\n", s.CatalogError)
	}

	fmt.Fprintln(w)
	if s.DocumentStore == "" {
		fmt.Fprintf(w, "Document store: %s\n", s.DocumentState)
	} else {
		fmt.Fprintf(w, "Document store: %s (%s)\n", s.DocumentStore, s.DocumentState)
	}
	backend := "local journal"
	if s.StatsBackend == stats.BackendDocument {
		backend = "document store"
	}
	fmt.Fprintf(w, "Statistics to:  %s\n", backend)
	fmt.Fprintf(w, "Journal:        %s (%s)\n", s.JournalPath, formatBytes(s.JournalSizeBytes))
	fmt.Fprintf(w, "Entries:        %s of %s\n", formatNumber(int64(s.JournalEntries)), formatNumber(int64(s.JournalCapacity)))
	fmt.Fprintf(w, "Page size:      %d\n", s.PageSize)
}

// catalogTarget describes where the catalog lives without credentials.
func catalogTarget(c config.CatalogConfig) string {
	if c.Driver == "sqlite3" {
		return c.Path
	}
	return fmt.Sprintf("%s@%s/%s", c.User, net.JoinHostPort(c.Host, strconv.Itoa(c.Port)), c.Database)
}
