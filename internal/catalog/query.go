package catalog

import (
	"strings"
)

// likeEscape is the escape character used in every LIKE pattern.
const likeEscape = "!"

// query holds the pieces shared by a search and its count, so both always
// run over the same FROM and WHERE.
type query struct {
	columns []string
	selects string
	from    string
	where   string
	args    []any
	order   string
	shape   func(vals []any) Row
}

func (q query) selectSQL() string {
	return "SELECT " + q.selects + " FROM " + q.from + q.whereSQL() + " ORDER BY " + q.order + " LIMIT ? OFFSET ?"
}

func (q query) countSQL() string {
	return "SELECT COUNT(*) FROM " + q.from + q.whereSQL()
}

func (q query) whereSQL() string {
	if q.where == "" {
		return ""
	}
	return " WHERE " + q.where
}

// containsPattern lowercases s and escapes LIKE wildcards so user text
// matches literally.
func containsPattern(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return "%" + r.Replace(s) + "%"
}

// columns returns the display columns for kind.
func columns(kind Kind) []string {
	switch kind {
	case KindTitle:
		return []string{"title", "description", "release_year", "genre"}
	case KindGenreYear:
		return []string{"title", "release_year", "genre"}
	case KindActor:
		return []string{"actor_name", "film_title", "release_year", "genre"}
	}
	return nil
}

// buildQuery returns the query for kind. ok is false when the criteria
// select nothing by definition (genre_year without any criteria).
func buildQuery(kind Kind, c Criteria) (q query, ok bool) {
	switch kind {
	case KindTitle:
		return query{
			columns: columns(kind),
			selects: "f.title, f.description, f.release_year, c.name",
			from: `film f
				LEFT JOIN film_category fc ON fc.film_id = f.film_id
				LEFT JOIN category c ON c.category_id = fc.category_id`,
			where: "LOWER(f.title) LIKE ? ESCAPE '" + likeEscape + "'",
			args:  []any{containsPattern(c.Text)},
			order: "f.title, f.film_id, c.name",
			shape: zipRow(columns(kind)),
		}, true

	case KindGenreYear:
		if c.Empty() {
			return query{columns: columns(kind)}, false
		}
		var clauses []string
		var args []any
		if g := strings.TrimSpace(c.Genre); g != "" {
			clauses = append(clauses, "c.name = ?")
			args = append(args, g)
		}
		if c.YearFrom != 0 {
			clauses = append(clauses, "f.release_year >= ?")
			args = append(args, c.YearFrom)
		}
		if c.YearTo != 0 {
			clauses = append(clauses, "f.release_year <= ?")
			args = append(args, c.YearTo)
		}
		return query{
			columns: columns(kind),
			selects: "f.title, f.release_year, c.name",
			from: `film f
				JOIN film_category fc ON fc.film_id = f.film_id
				JOIN category c ON c.category_id = fc.category_id`,
			where: strings.Join(clauses, " AND "),
			args:  args,
			order: "f.title, f.film_id, c.name",
			shape: zipRow(columns(kind)),
		}, true

	case KindActor:
		p := containsPattern(c.Text)
		esc := " ESCAPE '" + likeEscape + "'"
		return query{
			columns: columns(kind),
			selects: "a.first_name, a.last_name, f.title, f.release_year, c.name",
			from: `film f
				JOIN film_actor fa ON fa.film_id = f.film_id
				JOIN actor a ON a.actor_id = fa.actor_id
				LEFT JOIN film_category fc ON fc.film_id = f.film_id
				LEFT JOIN category c ON c.category_id = fc.category_id`,
			where: "(LOWER(a.first_name) LIKE ?" + esc + " OR LOWER(a.last_name) LIKE ?" + esc + ")",
			args:  []any{p, p},
			order: "f.release_year, f.title, a.last_name, a.first_name, f.film_id, a.actor_id, c.name",
			shape: actorRow,
		}, true
	}
	return query{}, false
}

func zipRow(cols []string) func([]any) Row {
	return func(vals []any) Row {
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = vals[i]
		}
		return row
	}
}

// actorRow joins first and last name into actor_name.
func actorRow(vals []any) Row {
	first, _ := vals[0].(string)
	last, _ := vals[1].(string)
	return Row{
		"actor_name":   strings.TrimSpace(first + " " + last),
		"film_title":   vals[2],
		"release_year": vals[3],
		"genre":        vals[4],
	}
}

// normalize converts driver byte slices into strings.
func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
