package stats

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/runnerr0/filmfinder/internal/catalog"
)

// foldKey is the grouping key for query text: trimmed and Unicode case
// folded, so "Matrix" and " MATRIX" count as the same query.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// groupQueries collapses events into one summary per folded query, in
// order of first appearance. The summary keeps the first observed text
// and kind. Blank queries are skipped.
func groupQueries(events []QueryEvent) []QuerySummary {
	ordered := make([]QueryEvent, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	index := make(map[string]int)
	var out []QuerySummary
	for _, e := range ordered {
		key := foldKey(e.Query)
		if key == "" {
			continue
		}
		i, ok := index[key]
		if !ok {
			index[key] = len(out)
			out = append(out, QuerySummary{
				Query:     strings.TrimSpace(e.Query),
				Count:     1,
				Kind:      e.Kind,
				FirstSeen: e.Timestamp,
				LastSeen:  e.Timestamp,
			})
			continue
		}
		s := &out[i]
		s.Count++
		if e.Timestamp.After(s.LastSeen) {
			s.LastSeen = e.Timestamp
		}
	}
	return out
}

func popularOf(events []QueryEvent, limit int) []QuerySummary {
	groups := groupQueries(events)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Count > groups[j].Count
	})
	return head(groups, limit)
}

func recentUniqueOf(events []QueryEvent, limit int) []QuerySummary {
	groups := groupQueries(events)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].LastSeen.After(groups[j].LastSeen)
	})
	return head(groups, limit)
}

func recentEventsOf(events []QueryEvent, limit int) []QueryEvent {
	out := make([]QueryEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return head(out, limit)
}

func summaryOf(events []QueryEvent) Summary {
	s := Summary{ByKind: make(map[catalog.Kind]int)}
	for _, e := range events {
		s.Total++
		s.ByKind[e.Kind]++
	}
	return s
}

// head returns at most limit leading elements, never nil.
func head[T any](s []T, limit int) []T {
	if limit <= 0 {
		return []T{}
	}
	if len(s) > limit {
		s = s[:limit]
	}
	if s == nil {
		return []T{}
	}
	return s
}
