package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one of the supported search forms.
type Kind string

const (
	KindTitle     Kind = "title"
	KindGenreYear Kind = "genre_year"
	KindActor     Kind = "actor"
)

// Kinds lists every search kind in menu order.
var Kinds = []Kind{KindTitle, KindGenreYear, KindActor}

// ParseKind accepts a kind name. "keyword" is the historical name of the
// title search and is still found in older journals.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title", "keyword":
		return KindTitle, nil
	case "genre_year", "genre", "year":
		return KindGenreYear, nil
	case "actor":
		return KindActor, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

func (k Kind) String() string { return string(k) }

// Validation errors returned by Criteria.Validate.
var (
	ErrUnknownKind    = errors.New("unknown search kind")
	ErrEmptyText      = errors.New("search text must not be empty")
	ErrInvertedYears  = errors.New("year_from is after year_to")
	ErrYearOutOfRange = errors.New("year out of range")
)

const (
	minYear = 1870
	maxYear = 2200
)

// Criteria carries the user input for a search. Text is used by title and
// actor searches; Genre and the year bounds by genre_year searches. A zero
// year means the bound is absent.
type Criteria struct {
	Text     string
	Genre    string
	YearFrom int
	YearTo   int
}

// Empty reports whether no genre_year criteria are set.
func (c Criteria) Empty() bool {
	return strings.TrimSpace(c.Genre) == "" && c.YearFrom == 0 && c.YearTo == 0
}

// Validate checks input for the given kind before it reaches the catalog.
// An empty genre_year criteria set is valid; it simply matches nothing.
func (c Criteria) Validate(kind Kind) error {
	switch kind {
	case KindTitle, KindActor:
		if strings.TrimSpace(c.Text) == "" {
			return ErrEmptyText
		}
	case KindGenreYear:
		for _, y := range []int{c.YearFrom, c.YearTo} {
			if y != 0 && (y < minYear || y > maxYear) {
				return fmt.Errorf("%w: %d", ErrYearOutOfRange, y)
			}
		}
		if c.YearFrom != 0 && c.YearTo != 0 && c.YearFrom > c.YearTo {
			return fmt.Errorf("%w: %d > %d", ErrInvertedYears, c.YearFrom, c.YearTo)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return nil
}

// Describe renders the criteria as the query text stored in statistics.
func (c Criteria) Describe(kind Kind) string {
	if kind != KindGenreYear {
		return strings.TrimSpace(c.Text)
	}
	year := func(y int) string {
		if y == 0 {
			return ""
		}
		return fmt.Sprint(y)
	}
	return fmt.Sprintf("genre:%s, years:%s-%s", strings.TrimSpace(c.Genre), year(c.YearFrom), year(c.YearTo))
}

// Row maps column names to values for one result row.
type Row map[string]any

// Page is one page of search results. Columns preserves display order.
type Page struct {
	Columns []string
	Rows    []Row
	// Total is the full match count. Search leaves it zero; the paging
	// flow fills it from its single Count.
	Total  int
	Offset int
}

// YearRange is the span of release years present in the catalog.
type YearRange struct {
	Min int
	Max int
}
