package cli

import (
	"encoding/json"
	"fmt"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}
	return withApp(c.globals, c.executeWith)
}

func (c *PurgeCommand) executeWith(a *app) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}
	entries := a.journal.Len()

	if !c.Force {
		fmt.Fprintf(a.out, "WARNING: this permanently deletes the local statistics journal %s (%d entries).\n", a.journal.Path(), entries)
		fmt.Fprintln(a.out, "Statistics stored in the document store are not touched.")
		fmt.Fprintln(a.out)
		con := newConsole(a.in, a.out)
		input, ok := con.ask(`Type "PURGE" to confirm: `)
		if !ok {
			return fmt.Errorf("aborted: no input received")
		}
		if input != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	if err := a.journal.Clear(); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if a.json {
		return json.NewEncoder(a.out).Encode(map[string]any{
			"purged":  true,
			"entries": entries,
			"journal": a.journal.Path(),
		})
	}
	fmt.Fprintf(a.out, "Purged %d journal entries.\n", entries)
	return nil
}
