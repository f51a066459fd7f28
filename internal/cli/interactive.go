package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/search"
)

const menu = `
Film search
  1. Search by title
  2. Search by genre and year
  3. Search by actor
  4. Search statistics
  5. List genres
  9. Exit
`

// Execute implements the go-flags Commander interface for InteractiveCommand.
func (c *InteractiveCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWith)
}

// executeWith runs the menu loop until the user exits or input ends.
// Backend failures are shown and the loop carries on.
func (c *InteractiveCommand) executeWith(a *app) error {
	ctx := context.Background()
	con := newConsole(a.in, a.out)
	flow := a.flow(con)

	fmt.Fprintf(a.out, "filmfinder %s\n", c.version)
	for {
		fmt.Fprint(a.out, menu)
		choice, ok := con.ask("\nChoose an action: ")
		if !ok {
			break
		}
		switch choice {
		case "1":
			text, ok := con.ask("Enter part of the title: ")
			if ok {
				runSearch(ctx, a, flow, catalog.KindTitle, catalog.Criteria{Text: text})
			}
		case "2":
			crit, ok := askGenreYear(ctx, a, con)
			if ok {
				runSearch(ctx, a, flow, catalog.KindGenreYear, crit)
			}
		case "3":
			text, ok := con.ask("Enter part of the actor's first or last name: ")
			if ok {
				runSearch(ctx, a, flow, catalog.KindActor, catalog.Criteria{Text: text})
			}
		case "4":
			showStats(ctx, a, a.cfg.Search.PopularLimit, a.cfg.Search.RecentLimit, true)
		case "5":
			showGenres(ctx, a)
		case "9", "q", "exit":
			fmt.Fprintln(a.out, "Goodbye.")
			return nil
		case "":
		default:
			fmt.Fprintf(a.out, "Unknown option %q. Choose 1-5 or 9.\n", choice)
		}
	}
	fmt.Fprintln(a.out, "Goodbye.")
	return nil
}

// runSearch runs one flow and reports invalid input as a notice.
func runSearch(ctx context.Context, a *app, flow *search.Flow, kind catalog.Kind, crit catalog.Criteria) {
	if _, err := flow.Run(ctx, kind, crit); err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

// askGenreYear shows the genre list and year span, then reads the three
// optional genre/year inputs. ok is false when input ended or a year was
// not a number.
func askGenreYear(ctx context.Context, a *app, con *console) (catalog.Criteria, bool) {
	showGenres(ctx, a)
	if yr, ok := a.catalog.YearRange(ctx); ok {
		fmt.Fprintf(a.out, "Release years in the catalog: %d-%d\n", yr.Min, yr.Max)
	}

	var crit catalog.Criteria
	genre, ok := con.ask("Genre (Enter to skip): ")
	if !ok {
		return crit, false
	}
	crit.Genre = genre

	for _, field := range []struct {
		prompt string
		dst    *int
	}{
		{"Year from (Enter to skip): ", &crit.YearFrom},
		{"Year to (Enter to skip): ", &crit.YearTo},
	} {
		text, ok := con.ask(field.prompt)
		if !ok {
			return crit, false
		}
		if text == "" {
			continue
		}
		year, err := strconv.Atoi(text)
		if err != nil {
			fmt.Fprintf(a.out, "Error: %q is not a year.\n", text)
			return crit, false
		}
		*field.dst = year
	}

	return crit, true
}

func showGenres(ctx context.Context, a *app) {
	genres := a.catalog.Genres(ctx)
	if len(genres) == 0 {
		fmt.Fprintln(a.out, "No genres available.")
		return
	}
	fmt.Fprintf(a.out, "Genres: %s\n", strings.Join(genres, ", "))
}
