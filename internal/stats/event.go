// Package stats records search statistics and reads them back.
//
// Events go to the document store when it is reachable and to a local JSON
// journal otherwise. Reads prefer the document store and fall back to the
// journal for any read that fails.
package stats

import (
	"context"
	"time"

	"github.com/runnerr0/filmfinder/internal/catalog"
)

// QueryEvent is one completed search interaction.
type QueryEvent struct {
	Query       string
	Kind        catalog.Kind
	ResultCount int
	Timestamp   time.Time
}

// QuerySummary aggregates all events for one query text.
type QuerySummary struct {
	Query     string
	Count     int
	Kind      catalog.Kind // kind of the first observed event
	LastSeen  time.Time
	FirstSeen time.Time
}

// Summary counts searches per kind.
type Summary struct {
	Total  int
	ByKind map[catalog.Kind]int
}

// Backend is a statistics store.
type Backend interface {
	Name() string
	Append(ctx context.Context, e QueryEvent) error
	Popular(ctx context.Context, limit int) ([]QuerySummary, error)
	RecentEvents(ctx context.Context, limit int) ([]QueryEvent, error)
	RecentUnique(ctx context.Context, limit int) ([]QuerySummary, error)
	Summary(ctx context.Context) (Summary, error)
}

// Backend names used in logs and metrics.
const (
	BackendDocument = "document"
	BackendFile     = "file"
)

// kindOf maps a stored search_type to a Kind. Unknown values are kept as
// they are so they still show up in summaries.
func kindOf(s string) catalog.Kind {
	if k, err := catalog.ParseKind(s); err == nil {
		return k
	}
	return catalog.Kind(s)
}
