package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"
	"unicode/utf8"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/search"
	"github.com/runnerr0/filmfinder/internal/stats"
)

// wrapWidth is the widest a text cell may get before it is wrapped.
const wrapWidth = 50

var columnTitles = map[string]string{
	"title":        "Title",
	"description":  "Description",
	"release_year": "Year",
	"genre":        "Genre",
	"actor_name":   "Actor",
	"film_title":   "Film",
}

// console renders search pages and statistics as plain text and asks the
// user whether to keep paging. It implements search.Presenter.
type console struct {
	in  *bufio.Reader
	out io.Writer
	// autoYes answers every continue prompt with yes.
	autoYes bool
}

func newConsole(in *bufio.Reader, out io.Writer) *console {
	return &console{in: in, out: out}
}

func (c *console) NotFound(query string) {
	if query == "" {
		fmt.Fprintln(c.out, "No films found.")
		return
	}
	fmt.Fprintf(c.out, "No films found for %q.\n", query)
}

func (c *console) ShowPage(page catalog.Page, info search.PageInfo) {
	fmt.Fprintln(c.out)
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)

	header := []string{"#"}
	for _, col := range page.Columns {
		header = append(header, columnTitle(col))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for i, row := range page.Rows {
		cells := make([][]string, len(page.Columns))
		height := 1
		for j, col := range page.Columns {
			cells[j] = wrap(cellText(row[col]), wrapWidth)
			height = max(height, len(cells[j]))
		}
		for line := 0; line < height; line++ {
			fields := []string{""}
			if line == 0 {
				fields[0] = fmt.Sprint(info.From + i)
			}
			for _, cell := range cells {
				if line < len(cell) {
					fields = append(fields, cell[line])
				} else {
					fields = append(fields, "")
				}
			}
			fmt.Fprintln(tw, strings.Join(fields, "\t"))
		}
	}
	tw.Flush()

	fmt.Fprintf(c.out, "\nShowing results %d-%d of %d (page %d of %d)\n",
		info.From, info.To, info.Total, info.Page, info.Pages)
}

func (c *console) AllShown(total int) {
	fmt.Fprintf(c.out, "All %d results shown.\n", total)
}

func (c *console) Continue() bool {
	if c.autoYes {
		return true
	}
	answer, ok := c.ask("Show more results? (y/n): ")
	return ok && isYes(answer)
}

// ask prints prompt and reads one line. ok is false when input is
// exhausted before anything was typed.
func (c *console) ask(prompt string) (string, bool) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		fmt.Fprintln(c.out)
		return "", false
	}
	return strings.TrimSpace(line), true
}

// isYes accepts English and Russian confirmations.
func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "да", "д":
		return true
	}
	return false
}

func columnTitle(col string) string {
	if t, ok := columnTitles[col]; ok {
		return t
	}
	return col
}

func cellText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.Join(strings.Fields(v), " ")
	default:
		return fmt.Sprint(v)
	}
}

// wrap breaks s into lines of at most width runes, splitting on spaces and
// cutting words that are longer than a whole line.
func wrap(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		lines []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if n > 0 {
			lines = append(lines, cur.String())
			cur.Reset()
			n = 0
		}
	}
	for _, w := range words {
		for utf8.RuneCountInString(w) > width {
			flush()
			r := []rune(w)
			lines = append(lines, string(r[:width]))
			w = string(r[width:])
		}
		wn := utf8.RuneCountInString(w)
		if n > 0 && n+1+wn > width {
			flush()
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(w)
		n += wn
	}
	flush()
	return lines
}

func printPopular(out io.Writer, rows []stats.QuerySummary) {
	fmt.Fprintln(out, "Popular queries:")
	if len(rows) == 0 {
		fmt.Fprintln(out, "  no queries recorded yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tQUERY\tCOUNT\tKIND\tLAST SEEN")
	for i, r := range rows {
		fmt.Fprintf(tw, "  %d\t%s\t%d\t%s\t%s\n", i+1, r.Query, r.Count, r.Kind, formatTime(r.LastSeen))
	}
	tw.Flush()
}

func printRecentEvents(out io.Writer, rows []stats.QueryEvent) {
	fmt.Fprintln(out, "Recent queries:")
	if len(rows) == 0 {
		fmt.Fprintln(out, "  no queries recorded yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  TIME\tQUERY\tKIND\tRESULTS")
	for _, e := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\n", formatTime(e.Timestamp), e.Query, e.Kind, e.ResultCount)
	}
	tw.Flush()
}

func printRecentUnique(out io.Writer, rows []stats.QuerySummary) {
	fmt.Fprintln(out, "Recent queries:")
	if len(rows) == 0 {
		fmt.Fprintln(out, "  no queries recorded yet")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "  LAST SEEN\tQUERY\tKIND\tCOUNT")
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\n", formatTime(r.LastSeen), r.Query, r.Kind, r.Count)
	}
	tw.Flush()
}

// printSummary lists the known kinds first, then any other kind found in
// older journals, so the lines add up to the total.
func printSummary(out io.Writer, s stats.Summary) {
	fmt.Fprintf(out, "Total searches: %s\n", formatNumber(int64(s.Total)))
	for _, k := range catalog.Kinds {
		fmt.Fprintf(out, "  %-12s %s\n", k, formatNumber(int64(s.ByKind[k])))
	}

	known := make(map[catalog.Kind]bool, len(catalog.Kinds))
	for _, k := range catalog.Kinds {
		known[k] = true
	}
	var other []catalog.Kind
	for k := range s.ByKind {
		if !known[k] {
			other = append(other, k)
		}
	}
	slices.Sort(other)
	for _, k := range other {
		name := k.String()
		if name == "" {
			name = "(unknown)"
		}
		fmt.Fprintf(out, "  %-12s %s\n", name, formatNumber(int64(s.ByKind[k])))
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
