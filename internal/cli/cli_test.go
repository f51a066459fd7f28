package cli

import (
	"strings"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseOnly builds a parser that records the active command without
// executing it.
func parseOnly(t *testing.T, args ...string) (*goflags.Parser, *GlobalFlags, *commands) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return parser, globals, cmds
}

func TestVersionFlag(t *testing.T) {
	output := captureOutput(t, func() {
		assert.NoError(t, RunWithArgs("0.1.0-test", []string{"--version"}))
	})
	assert.Equal(t, "filmfinder 0.1.0-test", strings.TrimSpace(output))
}

func TestHelpFlagDoesNotError(t *testing.T) {
	output := captureOutput(t, func() {
		assert.NoError(t, RunWithArgs("test", []string{"--help"}))
	})
	assert.Contains(t, output, "filmfinder")
	assert.Contains(t, output, "interactive")
}

func TestAllSubcommandsExist(t *testing.T) {
	parser, _, _ := buildParser("test")
	for _, name := range []string{"interactive", "search", "stats", "status", "import", "prune", "purge"} {
		assert.NotNil(t, parser.Find(name), "subcommand %s", name)
	}
}

func TestNoSubcommandIsAllowed(t *testing.T) {
	parser, _, _ := parseOnly(t)
	assert.Nil(t, parser.Active)
}

func TestGlobalFlags(t *testing.T) {
	_, globals, _ := parseOnly(t, "--json", "--verbose", "--config", "/tmp/ff.yaml", "status")
	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, "/tmp/ff.yaml", globals.Config)
}

func TestSearchFlags(t *testing.T) {
	parser, _, cmds := parseOnly(t, "search", "--genre", "Comedy", "--year-from", "1990", "--year-to", "2000", "--all")
	require.NotNil(t, parser.Active)
	assert.Equal(t, "search", parser.Active.Name)
	assert.Equal(t, "Comedy", cmds.Search.Genre)
	assert.Equal(t, 1990, cmds.Search.YearFrom)
	assert.Equal(t, 2000, cmds.Search.YearTo)
	assert.True(t, cmds.Search.All)
}

func TestPruneFlagDefaults(t *testing.T) {
	_, _, cmds := parseOnly(t, "prune")
	assert.Equal(t, "30d", cmds.Prune.OlderThan)
	assert.False(t, cmds.Prune.DryRun)
	assert.False(t, cmds.Prune.Force)
}

func TestStatsFlags(t *testing.T) {
	_, _, cmds := parseOnly(t, "stats", "--limit", "3", "--unique")
	assert.Equal(t, 3, cmds.Stats.Limit)
	assert.True(t, cmds.Stats.Unique)
}

func TestPurgeRequiresAll(t *testing.T) {
	err := RunWithArgs("test", []string{"purge"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "purge requires --all flag for safety")
}

func TestUnknownFlagFails(t *testing.T) {
	err := RunWithArgs("test", []string{"search", "--nope"})
	assert.Error(t, err)
}
