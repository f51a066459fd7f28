package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/runnerr0/filmfinder/internal/catalog"
)

type (
	// ClientSource supplies a live document store client.
	// *connection.Manager satisfies it.
	ClientSource interface {
		Document(ctx context.Context) (*mongo.Client, error)
	}

	// DocumentBackend stores events as documents in a Mongo collection.
	DocumentBackend struct {
		open    func(ctx context.Context) (collection, error)
		timeout time.Duration
	}

	queryDocument struct {
		Query        string    `bson:"query"`
		SearchType   string    `bson:"search_type"`
		Timestamp    time.Time `bson:"timestamp"`
		ResultsCount int       `bson:"results_count"`
	}

	groupDocument struct {
		Query      string    `bson:"_id"`
		Count      int       `bson:"count"`
		SearchType string    `bson:"search_type"`
		LastSeen   time.Time `bson:"last_seen"`
		FirstSeen  time.Time `bson:"first_seen"`
	}

	kindCountDocument struct {
		SearchType string `bson:"_id"`
		Count      int    `bson:"count"`
	}
)

// NewDocumentBackend returns a backend writing to database.collection.
// The client is resolved from src on every call so a reconnect performed by
// src is picked up.
func NewDocumentBackend(src ClientSource, database, collectionName string, timeout time.Duration) *DocumentBackend {
	return &DocumentBackend{
		open: func(ctx context.Context) (collection, error) {
			client, err := src.Document(ctx)
			if err != nil {
				return nil, err
			}
			return mongoCollection{coll: client.Database(database).Collection(collectionName)}, nil
		},
		timeout: timeout,
	}
}

func newDocumentBackendWithCollection(coll collection, timeout time.Duration) (*DocumentBackend, error) {
	if coll == nil {
		return nil, errors.New("collection is required")
	}
	return &DocumentBackend{
		open:    func(context.Context) (collection, error) { return coll, nil },
		timeout: timeout,
	}, nil
}

func (b *DocumentBackend) Name() string { return BackendDocument }

func (b *DocumentBackend) Append(ctx context.Context, e QueryEvent) error {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	coll, err := b.open(ctx)
	if err != nil {
		return err
	}
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return coll.InsertOne(ctx, queryDocument{
		Query:        e.Query,
		SearchType:   e.Kind.String(),
		Timestamp:    ts.UTC(),
		ResultsCount: e.ResultCount,
	})
}

func (b *DocumentBackend) Popular(ctx context.Context, limit int) ([]QuerySummary, error) {
	return b.grouped(ctx, bson.D{
		{Key: "count", Value: -1},
		{Key: "first_seen", Value: 1},
	}, limit)
}

func (b *DocumentBackend) RecentUnique(ctx context.Context, limit int) ([]QuerySummary, error) {
	return b.grouped(ctx, bson.D{
		{Key: "last_seen", Value: -1},
		{Key: "first_seen", Value: 1},
	}, limit)
}

func (b *DocumentBackend) RecentEvents(ctx context.Context, limit int) (events []QueryEvent, err error) {
	if limit <= 0 {
		return []QueryEvent{}, nil
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	coll, err := b.open(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Find(ctx, bson.D{}, options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("find recent: %w", err)
	}
	docs, err := decodeAll[queryDocument](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode recent: %w", err)
	}
	events = make([]QueryEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, QueryEvent{
			Query:       d.Query,
			Kind:        kindOf(d.SearchType),
			ResultCount: d.ResultsCount,
			Timestamp:   d.Timestamp.UTC(),
		})
	}
	return events, nil
}

func (b *DocumentBackend) Summary(ctx context.Context) (Summary, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	coll, err := b.open(ctx)
	if err != nil {
		return Summary{}, err
	}
	cur, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$search_type"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return Summary{}, fmt.Errorf("aggregate summary: %w", err)
	}
	docs, err := decodeAll[kindCountDocument](ctx, cur)
	if err != nil {
		return Summary{}, fmt.Errorf("decode summary: %w", err)
	}
	s := Summary{ByKind: make(map[catalog.Kind]int)}
	for _, d := range docs {
		s.Total += d.Count
		s.ByKind[kindOf(d.SearchType)] += d.Count
	}
	return s, nil
}

// grouped runs the per-query aggregation with the given ordering.
func (b *DocumentBackend) grouped(ctx context.Context, order bson.D, limit int) ([]QuerySummary, error) {
	if limit <= 0 {
		return []QuerySummary{}, nil
	}
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()

	coll, err := b.open(ctx)
	if err != nil {
		return nil, err
	}
	cur, err := coll.Aggregate(ctx, groupPipeline(order, limit))
	if err != nil {
		return nil, fmt.Errorf("aggregate queries: %w", err)
	}
	docs, err := decodeAll[groupDocument](ctx, cur)
	if err != nil {
		return nil, fmt.Errorf("decode queries: %w", err)
	}
	out := make([]QuerySummary, 0, len(docs))
	for _, d := range docs {
		out = append(out, QuerySummary{
			Query:     d.Query,
			Count:     d.Count,
			Kind:      kindOf(d.SearchType),
			LastSeen:  d.LastSeen.UTC(),
			FirstSeen: d.FirstSeen.UTC(),
		})
	}
	return out, nil
}

// groupPipeline groups on the exact query text. Sorting by timestamp first
// makes $first pick the earliest search kind.
func groupPipeline(order bson.D, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$query"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "search_type", Value: bson.D{{Key: "$first", Value: "$search_type"}}},
			{Key: "last_seen", Value: bson.D{{Key: "$max", Value: "$timestamp"}}},
			{Key: "first_seen", Value: bson.D{{Key: "$min", Value: "$timestamp"}}},
		}}},
		{{Key: "$sort", Value: order}},
		{{Key: "$limit", Value: int64(limit)}},
	}
}

func (b *DocumentBackend) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, b.timeout)
}

func decodeAll[T any](ctx context.Context, cur cursor) (out []T, err error) {
	defer func() {
		if cerr := cur.Close(ctx); err == nil && cerr != nil {
			err = cerr
		}
	}()
	for cur.Next(ctx) {
		var v T
		if err := cur.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type collection interface {
	InsertOne(ctx context.Context, document any) error
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error)
	Aggregate(ctx context.Context, pipeline any) (cursor, error)
}

type cursor interface {
	Next(ctx context.Context) bool
	Decode(val any) error
	Err() error
	Close(ctx context.Context) error
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c mongoCollection) InsertOne(ctx context.Context, document any) error {
	_, err := c.coll.InsertOne(ctx, document)
	return err
}

func (c mongoCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error) {
	cur, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	return cur, nil
}

func (c mongoCollection) Aggregate(ctx context.Context, pipeline any) (cursor, error) {
	cur, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	return cur, nil
}
