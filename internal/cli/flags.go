package cli

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable debug logging"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// InteractiveCommand runs the menu loop. It is the default command.
type InteractiveCommand struct {
	globals *GlobalFlags
	version string
}

// SearchCommand runs one search through the paginated flow.
type SearchCommand struct {
	Title    string `long:"title" description:"Search film titles containing text"`
	Genre    string `long:"genre" description:"Exact genre name"`
	YearFrom int    `long:"year-from" description:"Earliest release year (inclusive)"`
	YearTo   int    `long:"year-to" description:"Latest release year (inclusive)"`
	Actor    string `long:"actor" description:"Search by part of an actor's first or last name"`
	All      bool   `long:"all" description:"Print every page without prompting"`

	globals *GlobalFlags
	version string
}

// StatsCommand shows popular and recent queries.
type StatsCommand struct {
	Limit  int  `long:"limit" description:"Rows per list (default from config)"`
	Unique bool `long:"unique" description:"Collapse repeated recent queries"`

	globals *GlobalFlags
	version string
}

// StatusCommand shows configuration and backend reachability.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// ImportCommand loads films from a YAML file into a SQLite catalog.
type ImportCommand struct {
	File string `long:"file" description:"YAML file with a list of films (required)"`

	globals *GlobalFlags
	version string
}

// PruneCommand drops old entries from the local journal.
type PruneCommand struct {
	OlderThan string `long:"older-than" description:"Remove entries older than duration (e.g., 30d, 12h, 2w)" default:"30d"`
	DryRun    bool   `long:"dry-run" description:"Show what would be pruned without deleting"`
	Force     bool   `long:"force" description:"Skip confirmation prompt"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes the local journal with a safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
}
