package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Film is one catalog entry as read from an import file.
type Film struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Year        int      `yaml:"release_year"`
	Genres      []string `yaml:"genres"`
	Actors      []string `yaml:"actors"`
}

// LoadFilms decodes a YAML list of films.
func LoadFilms(r io.Reader) ([]Film, error) {
	var films []Film
	if err := yaml.NewDecoder(r).Decode(&films); err != nil {
		if errors.Is(err, io.EOF) {
			return []Film{}, nil
		}
		return nil, fmt.Errorf("decode films: %w", err)
	}
	for i, f := range films {
		if strings.TrimSpace(f.Title) == "" {
			return nil, fmt.Errorf("film #%d: title is required", i+1)
		}
	}
	if films == nil {
		films = []Film{}
	}
	return films, nil
}

// Import inserts films into a SQLite catalog in a single transaction,
// creating genres and actors on first use. It returns the number of films
// inserted.
func Import(ctx context.Context, db *sql.DB, films []Film) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, f := range films {
		if err := insertFilm(ctx, tx, f); err != nil {
			return 0, fmt.Errorf("film #%d (%s): %w", i+1, f.Title, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(films), nil
}

func insertFilm(ctx context.Context, tx *sql.Tx, f Film) error {
	var year any
	if f.Year != 0 {
		year = f.Year
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO film (title, description, release_year) VALUES (?, ?, ?)",
		strings.TrimSpace(f.Title), f.Description, year,
	)
	if err != nil {
		return fmt.Errorf("insert film: %w", err)
	}
	filmID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, g := range f.Genres {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO category (name) VALUES (?)", g); err != nil {
			return fmt.Errorf("insert genre: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO film_category (film_id, category_id)
			SELECT ?, category_id FROM category WHERE name = ?`, filmID, g,
		); err != nil {
			return fmt.Errorf("link genre: %w", err)
		}
	}

	for _, a := range f.Actors {
		first, last := splitName(a)
		if first == "" && last == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO actor (first_name, last_name) VALUES (?, ?)", first, last,
		); err != nil {
			return fmt.Errorf("insert actor: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO film_actor (actor_id, film_id)
			SELECT actor_id, ? FROM actor WHERE first_name = ? AND last_name = ?`, filmID, first, last,
		); err != nil {
			return fmt.Errorf("link actor: %w", err)
		}
	}
	return nil
}

// splitName splits "Penelope Guiness" at the last space. Single-word names
// are stored as a last name.
func splitName(full string) (first, last string) {
	full = strings.Join(strings.Fields(full), " ")
	i := strings.LastIndex(full, " ")
	if i < 0 {
		return "", full
	}
	return full[:i], full[i+1:]
}
