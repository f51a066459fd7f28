// Package connection owns the process-wide handles to the relational
// catalog and the document store. Handles are created lazily, pinged on
// every reuse and rebuilt when the ping fails.
package connection

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/runnerr0/filmfinder/internal/logging"
	"github.com/runnerr0/filmfinder/internal/metrics"
)

// Store names used in errors, logs and metrics.
const (
	StoreRelational = "relational"
	StoreDocument   = "document"
)

// Error reports that a store handle could not be constructed.
type Error struct {
	Store string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("connect to %s store: %v", e.Store, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// RelationalDialer opens and verifies a new catalog handle.
type RelationalDialer func(ctx context.Context) (*sql.DB, error)

// DocumentDialer opens and verifies a new document store client.
type DocumentDialer func(ctx context.Context) (*mongo.Client, error)

// Manager caches one relational and one document handle.
type Manager struct {
	rel *handle[*sql.DB]
	doc *handle[*mongo.Client]
}

// New returns a Manager that builds handles with the given dialers.
// Nothing is dialed until the first Relational or Document call.
func New(rel RelationalDialer, doc DocumentDialer, log zerolog.Logger, m *metrics.Metrics) *Manager {
	log = logging.Component(log, "connection")
	return &Manager{
		rel: &handle[*sql.DB]{
			store: StoreRelational,
			dial:  rel,
			ping: func(ctx context.Context, db *sql.DB) error {
				return db.PingContext(ctx)
			},
			close: func(_ context.Context, db *sql.DB) error {
				return db.Close()
			},
			log:     log,
			metrics: m,
		},
		doc: &handle[*mongo.Client]{
			store: StoreDocument,
			dial:  doc,
			ping:  pingMongo,
			close: func(ctx context.Context, c *mongo.Client) error {
				return c.Disconnect(ctx)
			},
			log:     log,
			metrics: m,
		},
	}
}

// Relational returns a live catalog handle, reconnecting if needed.
func (m *Manager) Relational(ctx context.Context) (*sql.DB, error) {
	return m.rel.get(ctx)
}

// Document returns a live document store client, reconnecting if needed.
func (m *Manager) Document(ctx context.Context) (*mongo.Client, error) {
	return m.doc.get(ctx)
}

// CloseAll releases both handles. It is safe to call when nothing is
// connected and the manager may be used again afterwards.
func (m *Manager) CloseAll(ctx context.Context) error {
	return errors.Join(m.rel.release(ctx), m.doc.release(ctx))
}

// handle is a single cached connection with liveness checking.
type handle[H any] struct {
	store string
	dial  func(context.Context) (H, error)
	ping  func(context.Context, H) error
	close func(context.Context, H) error

	current H
	live    bool

	log     zerolog.Logger
	metrics *metrics.Metrics
}

func (h *handle[H]) get(ctx context.Context) (H, error) {
	if h.live {
		err := h.ping(ctx, h.current)
		if err == nil {
			return h.current, nil
		}
		h.log.Info().Err(err).Str("store", h.store).Msg("cached connection failed liveness check, reconnecting")
		if cerr := h.close(ctx, h.current); cerr != nil {
			h.log.Debug().Err(cerr).Str("store", h.store).Msg("closing dead connection")
		}
		h.reset()
		h.metrics.Reconnected(h.store)
	}

	if h.dial == nil {
		var zero H
		return zero, &Error{Store: h.store, Err: errors.New("no dialer configured")}
	}
	conn, err := h.dial(ctx)
	if err != nil {
		var zero H
		return zero, &Error{Store: h.store, Err: err}
	}
	h.current = conn
	h.live = true
	h.log.Debug().Str("store", h.store).Msg("connection established")
	return conn, nil
}

func (h *handle[H]) release(ctx context.Context) error {
	if !h.live {
		return nil
	}
	err := h.close(ctx, h.current)
	h.reset()
	if err != nil {
		return fmt.Errorf("close %s store: %w", h.store, err)
	}
	return nil
}

func (h *handle[H]) reset() {
	var zero H
	h.current = zero
	h.live = false
}
