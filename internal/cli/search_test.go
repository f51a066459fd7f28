package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/filmfinder/internal/catalog"
)

func TestSearchCommand_AllPrintsEveryPage(t *testing.T) {
	a, out := newTestApp(t, "")
	cmd := &SearchCommand{Title: "matrix", All: true, globals: &GlobalFlags{}}

	require.NoError(t, cmd.executeWith(a))

	output := out.String()
	assert.Contains(t, output, "Showing results 1-2 of 3 (page 1 of 2)")
	assert.Contains(t, output, "Showing results 3-3 of 3 (page 2 of 2)")
	assert.Contains(t, output, "All 3 results shown.")
	assert.NotContains(t, output, "Show more results?")

	events := a.journal.ReadAll()
	require.Len(t, events, 1)
	assert.Equal(t, "matrix", events[0].Query)
	assert.Equal(t, catalog.KindTitle, events[0].Kind)
	assert.Equal(t, 3, events[0].ResultCount)
}

func TestSearchCommand_StopsOnNo(t *testing.T) {
	a, out := newTestApp(t, "n\n")
	cmd := &SearchCommand{Title: "matrix", globals: &GlobalFlags{}}

	require.NoError(t, cmd.executeWith(a))

	output := out.String()
	assert.Contains(t, output, "page 1 of 2")
	assert.Contains(t, output, "Show more results? (y/n):")
	assert.NotContains(t, output, "page 2 of 2")

	events := a.journal.ReadAll()
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].ResultCount, "the counted total is logged, not the rows shown")
}

func TestSearchCommand_RussianYesContinues(t *testing.T) {
	a, out := newTestApp(t, "да\n")
	cmd := &SearchCommand{Title: "matrix", globals: &GlobalFlags{}}

	require.NoError(t, cmd.executeWith(a))
	assert.Contains(t, out.String(), "page 2 of 2")
}

func TestSearchCommand_NotFoundIsLogged(t *testing.T) {
	a, out := newTestApp(t, "")
	cmd := &SearchCommand{Title: "zzz", globals: &GlobalFlags{}}

	require.NoError(t, cmd.executeWith(a))
	assert.Contains(t, out.String(), `No films found for "zzz".`)

	events := a.journal.ReadAll()
	require.Len(t, events, 1)
	assert.Zero(t, events[0].ResultCount)
}

func TestSearchCommand_GenreYear(t *testing.T) {
	a, out := newTestApp(t, "")
	cmd := &SearchCommand{Genre: "Sci-Fi", YearFrom: 2000, YearTo: 2010, globals: &GlobalFlags{}}

	require.NoError(t, cmd.executeWith(a))
	assert.Contains(t, out.String(), "Showing results 1-2 of 2 (page 1 of 1)")
	assert.Contains(t, out.String(), "The Matrix Reloaded")

	events := a.journal.ReadAll()
	require.Len(t, events, 1)
	assert.Equal(t, "genre:Sci-Fi, years:2000-2010", events[0].Query)
	assert.Equal(t, catalog.KindGenreYear, events[0].Kind)
}

func TestSearchCommand_InvertedYearsRejected(t *testing.T) {
	a, _ := newTestApp(t, "")
	cmd := &SearchCommand{YearFrom: 2010, YearTo: 2005, globals: &GlobalFlags{}}

	err := cmd.executeWith(a)
	require.ErrorIs(t, err, catalog.ErrInvertedYears)
	assert.Zero(t, a.journal.Len(), "rejected searches are not recorded")
}

func TestSearchCommand_RequiresExactlyOneKind(t *testing.T) {
	a, _ := newTestApp(t, "")

	err := (&SearchCommand{globals: &GlobalFlags{}}).executeWith(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search requires")

	err = (&SearchCommand{Title: "dune", Actor: "keanu", globals: &GlobalFlags{}}).executeWith(a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "choose one search kind")
}

func TestSearchCommand_JSON(t *testing.T) {
	a, out := newTestApp(t, "")
	a.json = true
	cmd := &SearchCommand{Actor: "KEANU", All: true, globals: &GlobalFlags{JSON: true}}

	require.NoError(t, cmd.executeWith(a))

	var got searchJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "KEANU", got.Query)
	assert.Equal(t, "actor", got.Kind)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 3, got.Shown)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Keanu Reeves", got.Rows[0]["actor_name"])
	assert.Equal(t, "The Matrix", got.Rows[0]["film_title"])
	assert.Equal(t, "exhausted", got.Reason)
}

func TestSearchCommand_JSONFirstPageOnly(t *testing.T) {
	a, out := newTestApp(t, "")
	a.json = true
	cmd := &SearchCommand{Title: "matrix", globals: &GlobalFlags{JSON: true}}

	require.NoError(t, cmd.executeWith(a))

	var got searchJSON
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 3, got.Total)
	assert.Len(t, got.Rows, 2)
	assert.Equal(t, "stopped", got.Reason)
}
