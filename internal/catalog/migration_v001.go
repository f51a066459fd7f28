package catalog

import (
	"context"
	"database/sql"
)

// migrateV001 creates the film catalog tables. Table and column names follow
// the sakila sample schema so the same queries run against MySQL.
func migrateV001(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS category (
			category_id INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL UNIQUE,
			last_update DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS film (
			film_id      INTEGER PRIMARY KEY AUTOINCREMENT,
			title        TEXT NOT NULL,
			description  TEXT,
			release_year INTEGER,
			last_update  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS film_category (
			film_id     INTEGER NOT NULL REFERENCES film(film_id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES category(category_id) ON DELETE CASCADE,
			PRIMARY KEY (film_id, category_id)
		)`,

		`CREATE TABLE IF NOT EXISTS actor (
			actor_id    INTEGER PRIMARY KEY AUTOINCREMENT,
			first_name  TEXT NOT NULL,
			last_name   TEXT NOT NULL,
			last_update DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(first_name, last_name)
		)`,

		`CREATE TABLE IF NOT EXISTS film_actor (
			actor_id INTEGER NOT NULL REFERENCES actor(actor_id) ON DELETE CASCADE,
			film_id  INTEGER NOT NULL REFERENCES film(film_id) ON DELETE CASCADE,
			PRIMARY KEY (actor_id, film_id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_film_title         ON film(title)`,
		`CREATE INDEX IF NOT EXISTS idx_film_release_year  ON film(release_year)`,
		`CREATE INDEX IF NOT EXISTS idx_actor_last_name    ON actor(last_name)`,
		`CREATE INDEX IF NOT EXISTS idx_film_actor_film    ON film_actor(film_id)`,
		`CREATE INDEX IF NOT EXISTS idx_film_category_cat  ON film_category(category_id)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
