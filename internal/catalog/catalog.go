// Package catalog runs film searches against the relational catalog.
//
// Reads are degradation boundaries: connectivity and query failures are
// logged and surface as empty results so the console keeps running.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/logging"
)

// HandleSource supplies a live catalog handle. *connection.Manager
// satisfies it.
type HandleSource interface {
	Relational(ctx context.Context) (*sql.DB, error)
}

// Catalog queries films by title, genre/year and actor.
type Catalog struct {
	src     HandleSource
	timeout time.Duration
	log     zerolog.Logger
}

// New returns a Catalog. A zero timeout leaves query deadlines to ctx.
func New(src HandleSource, timeout time.Duration, log zerolog.Logger) *Catalog {
	return &Catalog{
		src:     src,
		timeout: timeout,
		log:     logging.Component(log, "catalog"),
	}
}

// Count returns the number of rows Search would page through.
func (c *Catalog) Count(ctx context.Context, kind Kind, crit Criteria) int {
	q, ok := buildQuery(kind, crit)
	if !ok {
		return 0
	}
	n, err := c.count(ctx, q)
	if err != nil {
		c.log.Warn().Err(err).Str("kind", kind.String()).Msg("count failed")
		return 0
	}
	return n
}

// Search returns one page of results with Page.Total unset. It runs a
// single query; callers that need the match count ask Count once per
// search.
func (c *Catalog) Search(ctx context.Context, kind Kind, crit Criteria, limit, offset int) Page {
	if offset < 0 {
		offset = 0
	}
	page := Page{Columns: columns(kind), Rows: []Row{}, Offset: offset}

	q, ok := buildQuery(kind, crit)
	if !ok || limit <= 0 {
		return page
	}

	rows, err := c.fetch(ctx, q, limit, offset)
	if err != nil {
		c.log.Warn().Err(err).Str("kind", kind.String()).Int("offset", offset).Msg("search failed")
		return page
	}
	page.Rows = rows
	return page
}

// Genres lists all category names in alphabetical order.
func (c *Catalog) Genres(ctx context.Context) []string {
	genres := []string{}
	err := c.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		rows, err := db.QueryContext(ctx, "SELECT name FROM category ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			genres = append(genres, name)
		}
		return rows.Err()
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("list genres failed")
		return []string{}
	}
	return genres
}

// YearRange returns the earliest and latest release years. ok is false
// when the catalog is empty or unreachable.
func (c *Catalog) YearRange(ctx context.Context) (YearRange, bool) {
	var lo, hi sql.NullInt64
	err := c.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		return db.QueryRowContext(ctx, "SELECT MIN(release_year), MAX(release_year) FROM film").Scan(&lo, &hi)
	})
	if err != nil {
		c.log.Warn().Err(err).Msg("year range failed")
		return YearRange{}, false
	}
	if !lo.Valid || !hi.Valid {
		return YearRange{}, false
	}
	return YearRange{Min: int(lo.Int64), Max: int(hi.Int64)}, true
}

// FilmCount returns the number of films, reporting failures to the caller.
// It backs the status command, where the error itself is the answer.
func (c *Catalog) FilmCount(ctx context.Context) (int, error) {
	var n int
	err := c.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		return db.QueryRowContext(ctx, "SELECT COUNT(*) FROM film").Scan(&n)
	})
	return n, err
}

func (c *Catalog) count(ctx context.Context, q query) (int, error) {
	var n int
	err := c.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		return db.QueryRowContext(ctx, q.countSQL(), q.args...).Scan(&n)
	})
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func (c *Catalog) fetch(ctx context.Context, q query, limit, offset int) ([]Row, error) {
	result := []Row{}
	err := c.withDB(ctx, func(ctx context.Context, db *sql.DB) error {
		args := append(append([]any{}, q.args...), limit, offset)
		rows, err := db.QueryContext(ctx, q.selectSQL(), args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return err
		}
		for rows.Next() {
			vals := make([]any, len(cols))
			ptrs := make([]any, len(cols))
			for i := range vals {
				ptrs[i] = &vals[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return fmt.Errorf("scan row: %w", err)
			}
			for i := range vals {
				vals[i] = normalize(vals[i])
			}
			result = append(result, q.shape(vals))
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return result, nil
}

// withDB resolves a handle and runs fn under the configured query timeout.
func (c *Catalog) withDB(ctx context.Context, fn func(context.Context, *sql.DB) error) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	db, err := c.src.Relational(ctx)
	if err != nil {
		return err
	}
	return fn(ctx, db)
}
