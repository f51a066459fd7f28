package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/runnerr0/filmfinder/internal/stats"
)

// statsJSON is the JSON output structure for the stats command.
type statsJSON struct {
	Source  string             `json:"source"`
	Total   int                `json:"total_searches"`
	ByKind  map[string]int     `json:"by_kind"`
	Popular []querySummaryJSON `json:"popular"`
	Recent  any                `json:"recent"`
}

type querySummaryJSON struct {
	Query    string `json:"query"`
	Count    int    `json:"count"`
	Kind     string `json:"search_type"`
	LastSeen string `json:"last_seen,omitempty"`
}

type queryEventJSON struct {
	Query        string `json:"query"`
	Kind         string `json:"search_type"`
	Timestamp    string `json:"timestamp"`
	ResultsCount int    `json:"results_count"`
}

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWith)
}

func (c *StatsCommand) executeWith(a *app) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", c.Limit)
	}
	popular, recent := a.cfg.Search.PopularLimit, a.cfg.Search.RecentLimit
	if c.Limit > 0 {
		popular, recent = c.Limit, c.Limit
	}

	ctx := context.Background()
	if a.json {
		return c.printJSON(ctx, a, popular, recent)
	}
	showStats(ctx, a, popular, recent, c.Unique)
	return nil
}

func (c *StatsCommand) printJSON(ctx context.Context, a *app, popular, recent int) error {
	summary := a.reader.Summary(ctx)
	out := statsJSON{
		Source:  a.reader.Source(ctx),
		Total:   summary.Total,
		ByKind:  make(map[string]int, len(summary.ByKind)),
		Popular: summariesJSON(a.reader.Popular(ctx, popular)),
	}
	for k, n := range summary.ByKind {
		out.ByKind[k.String()] = n
	}
	if c.Unique {
		out.Recent = summariesJSON(a.reader.RecentUniqueQueries(ctx, recent))
	} else {
		events := a.reader.RecentEvents(ctx, recent)
		rows := make([]queryEventJSON, len(events))
		for i, e := range events {
			rows[i] = queryEventJSON{
				Query:        e.Query,
				Kind:         e.Kind.String(),
				Timestamp:    e.Timestamp.UTC().Format(time.RFC3339),
				ResultsCount: e.ResultCount,
			}
		}
		out.Recent = rows
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func summariesJSON(rows []stats.QuerySummary) []querySummaryJSON {
	out := make([]querySummaryJSON, len(rows))
	for i, r := range rows {
		out[i] = querySummaryJSON{Query: r.Query, Count: r.Count, Kind: r.Kind.String()}
		if !r.LastSeen.IsZero() {
			out[i].LastSeen = r.LastSeen.UTC().Format(time.RFC3339)
		}
	}
	return out
}

// showStats prints the statistics screen used by the stats command and the
// interactive menu.
func showStats(ctx context.Context, a *app, popular, recent int, unique bool) {
	source := "local journal"
	if a.reader.Source(ctx) == stats.BackendDocument {
		source = "document store"
	}
	fmt.Fprintf(a.out, "\nSearch statistics (%s)\n", source)
	fmt.Fprintln(a.out, "========================")
	printSummary(a.out, a.reader.Summary(ctx))
	fmt.Fprintln(a.out)
	printPopular(a.out, a.reader.Popular(ctx, popular))
	fmt.Fprintln(a.out)
	if unique {
		printRecentUnique(a.out, a.reader.RecentUniqueQueries(ctx, recent))
	} else {
		printRecentEvents(a.out, a.reader.RecentEvents(ctx, recent))
	}
}
