package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/runnerr0/filmfinder/internal/catalog"
)

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWith)
}

func (c *ImportCommand) executeWith(a *app) error {
	if c.File == "" {
		return fmt.Errorf("--file is required")
	}
	if a.cfg.Catalog.Driver != "sqlite3" {
		return fmt.Errorf("import only writes to sqlite3 catalogs, configured driver is %s", a.cfg.Catalog.Driver)
	}

	f, err := os.Open(c.File)
	if err != nil {
		return fmt.Errorf("open films file: %w", err)
	}
	defer f.Close()

	films, err := catalog.LoadFilms(f)
	if err != nil {
		return fmt.Errorf("read films file: %w", err)
	}

	ctx := context.Background()
	db, err := a.conns.Relational(ctx)
	if err != nil {
		return err
	}
	n, err := catalog.Import(ctx, db, films)
	if err != nil {
		return err
	}

	if a.json {
		return json.NewEncoder(a.out).Encode(map[string]any{
			"imported": n,
			"read":     len(films),
			"catalog":  a.cfg.Catalog.Path,
		})
	}
	fmt.Fprintf(a.out, "Imported %d of %d films into %s\n", n, len(films), a.cfg.Catalog.Path)
	return nil
}
