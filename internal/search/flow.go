// Package search drives one paginated search interaction: count, show
// pages until the user stops or results run out, then record the search
// exactly once.
package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/logging"
	"github.com/runnerr0/filmfinder/internal/metrics"
)

// DefaultPageSize is used when Options.PageSize is not positive.
const DefaultPageSize = 10

type (
	// Catalog is the subset of *catalog.Catalog the flow needs.
	Catalog interface {
		Count(ctx context.Context, kind catalog.Kind, crit catalog.Criteria) int
		Search(ctx context.Context, kind catalog.Kind, crit catalog.Criteria, limit, offset int) catalog.Page
	}

	// Recorder stores the finished search. *stats.Recorder satisfies it.
	Recorder interface {
		Record(ctx context.Context, query string, kind catalog.Kind, count int)
	}

	// Presenter renders the interaction and asks whether to continue.
	Presenter interface {
		NotFound(query string)
		ShowPage(page catalog.Page, info PageInfo)
		AllShown(total int)
		Continue() bool
	}

	// PageInfo locates a page within the full result set. From and To are
	// 1-based and inclusive.
	PageInfo struct {
		From, To    int
		Total       int
		Page, Pages int
	}

	// Options configures a Flow.
	Options struct {
		PageSize int
		// LogZeroResults records searches that matched nothing.
		LogZeroResults bool
	}

	// Outcome summarizes a finished interaction.
	Outcome struct {
		Query  string
		Kind   catalog.Kind
		Total  int
		Shown  int
		Pages  int
		Reason DoneReason
		Logged bool
	}

	// Flow runs search interactions.
	Flow struct {
		catalog   Catalog
		recorder  Recorder
		presenter Presenter
		opts      Options
		log       zerolog.Logger
		metrics   *metrics.Metrics

		// observe, when set, sees every state the flow enters.
		observe func(State)
	}
)

// State is a step of the interaction.
type State int

const (
	StateStart State = iota
	StateCounting
	StatePageFetch
	StateDisplay
	StateContinue
	StateLogging
	StateDone
)

var stateNames = [...]string{"START", "COUNTING", "PAGE_FETCH", "DISPLAY", "CONTINUE", "LOGGING", "DONE"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// DoneReason tells why paging stopped.
type DoneReason string

const (
	ReasonNotFound  DoneReason = "not_found"
	ReasonExhausted DoneReason = "exhausted"
	ReasonStopped   DoneReason = "stopped"
	ReasonEmptyPage DoneReason = "empty_page"
)

// NewFlow returns a Flow.
func NewFlow(c Catalog, r Recorder, p Presenter, opts Options, log zerolog.Logger, m *metrics.Metrics) *Flow {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &Flow{
		catalog:   c,
		recorder:  r,
		presenter: p,
		opts:      opts,
		log:       logging.Component(log, "search"),
		metrics:   m,
	}
}

// Run performs one search. Invalid criteria are rejected before the
// catalog is touched and nothing is recorded.
func (f *Flow) Run(ctx context.Context, kind catalog.Kind, crit catalog.Criteria) (Outcome, error) {
	f.enter(StateStart)
	if err := crit.Validate(kind); err != nil {
		return Outcome{}, fmt.Errorf("invalid search: %w", err)
	}
	out := Outcome{Query: crit.Describe(kind), Kind: kind}

	f.enter(StateCounting)
	out.Total = f.catalog.Count(ctx, kind, crit)
	if out.Total == 0 {
		f.presenter.NotFound(out.Query)
		out.Reason = ReasonNotFound
	} else {
		out.Reason = f.page(ctx, kind, crit, &out)
	}

	f.enter(StateLogging)
	if out.Total > 0 || f.opts.LogZeroResults {
		f.recorder.Record(ctx, out.Query, kind, out.Total)
		out.Logged = true
	}
	f.metrics.SearchCompleted(kind.String())

	f.enter(StateDone)
	f.log.Debug().
		Str("query", out.Query).
		Str("kind", kind.String()).
		Int("total", out.Total).
		Int("shown", out.Shown).
		Str("reason", string(out.Reason)).
		Msg("search finished")
	return out, nil
}

// page shows pages until the results run out or the user stops.
func (f *Flow) page(ctx context.Context, kind catalog.Kind, crit catalog.Criteria, out *Outcome) DoneReason {
	size := f.opts.PageSize
	pages := (out.Total + size - 1) / size
	offset := 0
	for {
		f.enter(StatePageFetch)
		page := f.catalog.Search(ctx, kind, crit, size, offset)
		if len(page.Rows) == 0 {
			return ReasonEmptyPage
		}
		page.Total = out.Total

		f.enter(StateDisplay)
		out.Shown += len(page.Rows)
		out.Pages++
		f.metrics.RowsShown(len(page.Rows))
		f.presenter.ShowPage(page, PageInfo{
			From:  offset + 1,
			To:    offset + len(page.Rows),
			Total: out.Total,
			Page:  offset/size + 1,
			Pages: pages,
		})

		f.enter(StateContinue)
		if offset+size >= out.Total {
			f.presenter.AllShown(out.Total)
			return ReasonExhausted
		}
		if !f.presenter.Continue() {
			return ReasonStopped
		}
		offset += size
	}
}

func (f *Flow) enter(s State) {
	if f.observe != nil {
		f.observe(s)
	}
}
