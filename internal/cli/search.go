package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/search"
)

// searchJSON is the JSON output structure for the search command.
type searchJSON struct {
	Query  string        `json:"query"`
	Kind   string        `json:"kind"`
	Total  int           `json:"total"`
	Shown  int           `json:"shown"`
	Rows   []catalog.Row `json:"rows"`
	Reason string        `json:"reason"`
}

// collector gathers pages instead of printing them.
type collector struct {
	rows []catalog.Row
	all  bool
}

func (c *collector) NotFound(string) {}

func (c *collector) ShowPage(page catalog.Page, _ search.PageInfo) {
	c.rows = append(c.rows, page.Rows...)
}

func (c *collector) AllShown(int) {}

func (c *collector) Continue() bool { return c.all }

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWith)
}

func (c *SearchCommand) executeWith(a *app) error {
	kind, crit, err := c.criteria()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if a.json {
		col := &collector{rows: []catalog.Row{}, all: c.All}
		out, err := a.flow(col).Run(ctx, kind, crit)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(searchJSON{
			Query:  out.Query,
			Kind:   out.Kind.String(),
			Total:  out.Total,
			Shown:  out.Shown,
			Rows:   col.rows,
			Reason: string(out.Reason),
		})
	}

	con := newConsole(a.in, a.out)
	con.autoYes = c.All
	_, err = a.flow(con).Run(ctx, kind, crit)
	return err
}

// criteria maps the flags to exactly one search kind.
func (c *SearchCommand) criteria() (catalog.Kind, catalog.Criteria, error) {
	var kinds []string
	if c.Title != "" {
		kinds = append(kinds, "--title")
	}
	if c.Actor != "" {
		kinds = append(kinds, "--actor")
	}
	if c.Genre != "" || c.YearFrom != 0 || c.YearTo != 0 {
		kinds = append(kinds, "--genre/--year-from/--year-to")
	}

	switch {
	case len(kinds) == 0:
		return "", catalog.Criteria{}, fmt.Errorf("search requires --title, --actor or --genre/--year-from/--year-to")
	case len(kinds) > 1:
		return "", catalog.Criteria{}, fmt.Errorf("choose one search kind, got %s", strings.Join(kinds, " and "))
	case c.Title != "":
		return catalog.KindTitle, catalog.Criteria{Text: c.Title}, nil
	case c.Actor != "":
		return catalog.KindActor, catalog.Criteria{Text: c.Actor}, nil
	default:
		return catalog.KindGenreYear, catalog.Criteria{Genre: c.Genre, YearFrom: c.YearFrom, YearTo: c.YearTo}, nil
	}
}
