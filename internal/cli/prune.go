package cli

import (
	"encoding/json"
	"fmt"
	"time"
)

// pruneJSON is the JSON output structure for the prune command.
type pruneJSON struct {
	Pruned    int    `json:"pruned"`
	DryRun    bool   `json:"dry_run"`
	OlderThan string `json:"older_than"`
	Remaining int    `json:"remaining"`
}

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWith)
}

func (c *PruneCommand) executeWith(a *app) error {
	age, err := parseDuration(c.OlderThan)
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-age)
	human := formatDurationHuman(age)

	count := a.journal.CountBefore(cutoff)
	if c.DryRun || count == 0 {
		return c.report(a, pruneJSON{Pruned: count, DryRun: c.DryRun, OlderThan: c.OlderThan, Remaining: a.journal.Len()}, human)
	}

	if !c.Force && !a.json {
		con := newConsole(a.in, a.out)
		answer, ok := con.ask(fmt.Sprintf("Prune %d journal entries older than %s? Proceed? (y/n): ", count, human))
		if !ok || !isYes(answer) {
			fmt.Fprintln(a.out, "Aborted.")
			return nil
		}
	}

	pruned, err := a.journal.Prune(cutoff)
	if err != nil {
		return fmt.Errorf("prune journal: %w", err)
	}
	return c.report(a, pruneJSON{Pruned: pruned, OlderThan: c.OlderThan, Remaining: a.journal.Len()}, human)
}

func (c *PruneCommand) report(a *app, r pruneJSON, human string) error {
	if a.json {
		return json.NewEncoder(a.out).Encode(r)
	}
	switch {
	case r.Pruned == 0:
		fmt.Fprintf(a.out, "Nothing to prune: no journal entries older than %s.\n", human)
	case r.DryRun:
		fmt.Fprintf(a.out, "Would prune %d entries older than %s.\n", r.Pruned, human)
	default:
		fmt.Fprintf(a.out, "Pruned %d entries older than %s. %d remain.\n", r.Pruned, human, r.Remaining)
	}
	return nil
}
