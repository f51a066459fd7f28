package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/logging"
)

// DefaultCapacity is the journal size used when none is configured.
const DefaultCapacity = 1000

// journalEntry is the on-disk shape of one event.
type journalEntry struct {
	Query        string `json:"query"`
	SearchType   string `json:"search_type"`
	Timestamp    string `json:"timestamp"`
	ResultsCount int    `json:"results_count"`
}

// Journal is a bounded JSON array of events in a single file. The whole
// file is rewritten on every append. Append and ReadAll never fail: errors
// are logged and treated as an empty journal.
type Journal struct {
	path     string
	capacity int
	log      zerolog.Logger
	now      func() time.Time
}

// NewJournal returns a journal at path keeping at most capacity entries.
func NewJournal(path string, capacity int, log zerolog.Logger) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Journal{
		path:     path,
		capacity: capacity,
		log:      logging.Component(log, "journal"),
		now:      time.Now,
	}
}

// Path returns the journal file location.
func (j *Journal) Path() string { return j.path }

// Capacity returns the maximum number of entries kept.
func (j *Journal) Capacity() int { return j.capacity }

// Append adds e, evicting the oldest entries beyond capacity. A zero
// timestamp is replaced with the current time.
func (j *Journal) Append(e QueryEvent) {
	entries := j.load()
	ts := e.Timestamp
	if ts.IsZero() {
		ts = j.now()
	}
	entries = append(entries, journalEntry{
		Query:        e.Query,
		SearchType:   e.Kind.String(),
		Timestamp:    ts.UTC().Format(time.RFC3339Nano),
		ResultsCount: e.ResultCount,
	})
	if len(entries) > j.capacity {
		entries = entries[len(entries)-j.capacity:]
	}
	if err := j.write(entries); err != nil {
		j.log.Warn().Err(err).Str("path", j.path).Msg("could not write journal")
	}
}

// ReadAll returns every entry in file order, oldest first.
func (j *Journal) ReadAll() []QueryEvent {
	entries := j.load()
	events := make([]QueryEvent, 0, len(entries))
	for _, en := range entries {
		events = append(events, en.event())
	}
	return events
}

// Len returns the number of entries currently stored.
func (j *Journal) Len() int {
	return len(j.load())
}

// CountBefore returns how many entries Prune(before) would remove.
func (j *Journal) CountBefore(before time.Time) int {
	n := 0
	for _, en := range j.load() {
		if en.olderThan(before) {
			n++
		}
	}
	return n
}

// Prune removes entries with a timestamp before the cut-off. Entries whose
// timestamp cannot be parsed are kept.
func (j *Journal) Prune(before time.Time) (int, error) {
	entries, err := j.read()
	if err != nil {
		return 0, err
	}
	kept := entries[:0]
	for _, en := range entries {
		if !en.olderThan(before) {
			kept = append(kept, en)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := j.write(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Clear deletes the journal file. A missing file is not an error.
func (j *Journal) Clear() error {
	if err := os.Remove(j.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove journal: %w", err)
	}
	return nil
}

// load reads the journal, treating any failure as an empty history.
func (j *Journal) load() []journalEntry {
	entries, err := j.read()
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.path).Msg("ignoring unreadable journal")
		return []journalEntry{}
	}
	return entries
}

// read returns the stored entries; a missing or empty file is empty history.
func (j *Journal) read() ([]journalEntry, error) {
	data, err := os.ReadFile(j.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []journalEntry{}, nil
		}
		return nil, fmt.Errorf("read journal: %w", err)
	}
	if len(data) == 0 {
		return []journalEntry{}, nil
	}
	var entries []journalEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse journal: %w", err)
	}
	if entries == nil {
		entries = []journalEntry{}
	}
	return entries, nil
}

// permission is the journal file mode; temp files start out 0600.
const permission = 0o644

// write replaces the journal through a temp file and rename.
func (j *Journal) write(entries []journalEntry) error {
	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create journal directory: %w", err)
	}
	f, err := os.CreateTemp(dir, filepath.Base(j.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp) //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entries); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync journal: %w", err)
	}
	if err := f.Chmod(permission); err != nil {
		_ = f.Close()
		return fmt.Errorf("chmod journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}
	if err := os.Rename(tmp, j.path); err != nil {
		return fmt.Errorf("replace journal: %w", err)
	}
	return nil
}

func (en journalEntry) event() QueryEvent {
	ts, _ := parseTimestamp(en.Timestamp)
	return QueryEvent{
		Query:       en.Query,
		Kind:        kindOf(en.SearchType),
		ResultCount: en.ResultsCount,
		Timestamp:   ts,
	}
}

func (en journalEntry) olderThan(before time.Time) bool {
	ts, err := parseTimestamp(en.Timestamp)
	return err == nil && ts.Before(before)
}

// parseTimestamp accepts the formats older journals were written with.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
