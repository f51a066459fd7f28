package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/runnerr0/filmfinder/internal/catalog"
	"github.com/runnerr0/filmfinder/internal/config"
	"github.com/runnerr0/filmfinder/internal/connection"
	"github.com/runnerr0/filmfinder/internal/logging"
	"github.com/runnerr0/filmfinder/internal/metrics"
	"github.com/runnerr0/filmfinder/internal/search"
	"github.com/runnerr0/filmfinder/internal/stats"
)

// app is the set of components one command invocation works with.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	closeLog func() error

	metrics  *metrics.Metrics
	conns    *connection.Manager
	catalog  *catalog.Catalog
	journal  *stats.Journal
	probe    *stats.Probe // nil when no document store is configured
	recorder *stats.Recorder
	reader   *stats.Reader

	in   *bufio.Reader
	out  io.Writer
	json bool
}

// openApp loads configuration for globals and wires an app writing to
// stdout and reading from stdin.
func openApp(globals *GlobalFlags) (*app, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	log, closeLog, err := logging.New(cfg.Logging, os.Stderr)
	if err != nil {
		return nil, err
	}

	jsonOut := globals != nil && globals.JSON
	return newApp(cfg, log, closeLog, os.Stdin, os.Stdout, jsonOut), nil
}

// loadConfig reads the config file, overlays the environment and expands
// home-relative paths.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if globals != nil && globals.Config != "" {
		path, perr := config.ExpandPath(globals.Config)
		if perr != nil {
			return nil, perr
		}
		cfg, err = config.LoadOrCreateAt(path)
	} else {
		cfg, err = config.LoadOrCreate()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := config.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	if globals != nil && globals.Verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	for _, p := range []*string{&cfg.Catalog.Path, &cfg.Stats.JournalPath, &cfg.Metrics.Textfile} {
		if *p == "" {
			continue
		}
		expanded, err := config.ExpandPath(*p)
		if err != nil {
			return nil, err
		}
		*p = expanded
	}
	return cfg, nil
}

// newApp wires every component from cfg. Nothing is dialed here; both
// stores are connected on first use.
func newApp(cfg *config.Config, log zerolog.Logger, closeLog func() error, in io.Reader, out io.Writer, jsonOut bool) *app {
	m := metrics.New()

	var prepare func(context.Context, *sql.DB) error
	if cfg.Catalog.Driver == "sqlite3" {
		prepare = catalog.Migrate
	}
	relational := connection.DialSQL(cfg.Catalog.Driver, cfg.Catalog.DSN(), prepare)

	var document connection.DocumentDialer
	if documentConfigured(cfg.Stats) {
		document = connection.DialMongo(cfg.Stats.URI(), cfg.Stats.OperationTimeout)
	}
	conns := connection.New(relational, document, log, m)

	journal := stats.NewJournal(cfg.Stats.JournalPath, cfg.Stats.JournalCapacity, log)
	file := stats.NewFileBackend(journal)

	var (
		doc   stats.Backend
		probe *stats.Probe
		avail stats.Availability
	)
	if document != nil {
		doc = stats.NewDocumentBackend(conns, cfg.Stats.Database, cfg.Stats.Collection, cfg.Stats.OperationTimeout)
		probe = stats.NewProbe(stats.MongoCheck(cfg.Stats.URI(), cfg.Stats.ProbeTimeout),
			cfg.Stats.ProbeTimeout, cfg.Stats.RecheckInterval, log, m)
		avail = probe
	}

	if closeLog == nil {
		closeLog = func() error { return nil }
	}

	return &app{
		cfg:      cfg,
		log:      log,
		closeLog: closeLog,
		metrics:  m,
		conns:    conns,
		catalog:  catalog.New(conns, cfg.Catalog.QueryTimeout, log),
		journal:  journal,
		probe:    probe,
		recorder: stats.NewRecorder(doc, file, avail, log, m),
		reader:   stats.NewReader(doc, file, avail, log, m),
		in:       bufio.NewReader(in),
		out:      out,
		json:     jsonOut,
	}
}

// documentConfigured reports whether a document store was configured at
// all. Without one every statistic goes straight to the journal.
func documentConfigured(s config.StatsConfig) bool {
	return s.MongoURI != "" || s.MongoHost != ""
}

// flow returns a search flow rendering through p.
func (a *app) flow(p search.Presenter) *search.Flow {
	opts := search.Options{
		PageSize:       a.cfg.Search.PageSize,
		LogZeroResults: a.cfg.Search.LogZeroResults,
	}
	return search.NewFlow(a.catalog, a.recorder, p, opts, a.log, a.metrics)
}

// close releases both store handles, exports metrics and closes the log.
// Store and metrics problems are logged since they happen after the
// command's own work is done.
func (a *app) close() error {
	err := errors.Join(
		a.conns.CloseAll(context.Background()),
		a.metrics.WriteTextfile(a.cfg.Metrics.Textfile),
	)
	if err != nil {
		a.log.Warn().Err(err).Msg("shutdown")
	}
	return a.closeLog()
}

// withApp opens an app, runs fn and closes the app on every path.
func withApp(globals *GlobalFlags, fn func(*app) error) error {
	a, err := openApp(globals)
	if err != nil {
		return err
	}
	return runApp(a, fn)
}

// runApp runs fn and closes a, returning both errors.
func runApp(a *app, fn func(*app) error) (err error) {
	defer func() {
		err = errors.Join(err, a.close())
	}()
	return fn(a)
}
