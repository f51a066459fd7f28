package stats

import (
	"context"
)

// FileBackend serves statistics from the local journal.
type FileBackend struct {
	journal *Journal
}

// NewFileBackend wraps j.
func NewFileBackend(j *Journal) *FileBackend {
	return &FileBackend{journal: j}
}

func (b *FileBackend) Name() string { return BackendFile }

// Append never fails; journal write errors are logged by the journal.
func (b *FileBackend) Append(_ context.Context, e QueryEvent) error {
	b.journal.Append(e)
	return nil
}

func (b *FileBackend) Popular(_ context.Context, limit int) ([]QuerySummary, error) {
	return popularOf(b.journal.ReadAll(), limit), nil
}

func (b *FileBackend) RecentEvents(_ context.Context, limit int) ([]QueryEvent, error) {
	return recentEventsOf(b.journal.ReadAll(), limit), nil
}

func (b *FileBackend) RecentUnique(_ context.Context, limit int) ([]QuerySummary, error) {
	return recentUniqueOf(b.journal.ReadAll(), limit), nil
}

func (b *FileBackend) Summary(context.Context) (Summary, error) {
	return summaryOf(b.journal.ReadAll()), nil
}
