package cli

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Interactive *InteractiveCommand
	Search      *SearchCommand
	Stats       *StatsCommand
	Status      *StatusCommand
	Import      *ImportCommand
	Prune       *PruneCommand
	Purge       *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	// Errors are returned to the caller and printed once by main.
	parser := goflags.NewParser(&globals, goflags.HelpFlag|goflags.PassDoubleDash)
	parser.Name = "filmfinder"
	parser.LongDescription = "Search a film catalog by title, genre, year or actor and keep statistics of what was searched."
	parser.SubcommandsOptional = true

	cmds := &commands{
		Interactive: &InteractiveCommand{globals: &globals, version: version},
		Search:      &SearchCommand{globals: &globals, version: version},
		Stats:       &StatsCommand{globals: &globals, version: version},
		Status:      &StatusCommand{globals: &globals, version: version},
		Import:      &ImportCommand{globals: &globals, version: version},
		Prune:       &PruneCommand{globals: &globals, version: version},
		Purge:       &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("interactive", "Run the interactive menu", "Run the interactive search menu. This is the default when no command is given.", cmds.Interactive)
	parser.AddCommand("search", "Run one search", "Run one title, genre/year or actor search and record it in the statistics.", cmds.Search)
	parser.AddCommand("stats", "Show search statistics", "Show popular queries, recent queries and a per-kind summary.", cmds.Stats)
	parser.AddCommand("status", "Show configuration and backend health", "Show configuration, catalog reachability, document store availability and journal size.", cmds.Status)
	parser.AddCommand("import", "Load films into a SQLite catalog", "Load films from a YAML file into the configured SQLite catalog.", cmds.Import)
	parser.AddCommand("prune", "Drop old journal entries", "Remove local journal entries older than a duration.", cmds.Prune)
	parser.AddCommand("purge", "Delete the local journal", "Delete the local statistics journal. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the filmfinder CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the
// matched subcommand, or the interactive menu when none is given.
func RunWithArgs(version string, args []string) error {
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("filmfinder %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, cmds := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		var flagsErr *goflags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == goflags.ErrHelp {
			fmt.Println(flagsErr.Message)
			return nil
		}
		return err
	}

	if parser.Active == nil {
		return cmds.Interactive.Execute(nil)
	}
	return nil
}
