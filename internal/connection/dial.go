package connection

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// DialSQL opens driver/dsn, pings it and runs prepare (when non-nil) on the
// fresh handle. sql.Open alone never touches the network, so the ping is
// what turns a bad host or credentials into a construction error.
func DialSQL(driver, dsn string, prepare func(context.Context, *sql.DB) error) RelationalDialer {
	return func(ctx context.Context) (*sql.DB, error) {
		db, err := sql.Open(driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", driver, err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping %s: %w", driver, err)
		}
		if prepare != nil {
			if err := prepare(ctx, db); err != nil {
				db.Close()
				return nil, fmt.Errorf("prepare %s: %w", driver, err)
			}
		}
		return db, nil
	}
}

// DialMongo connects to uri with explicit connect and server selection
// timeouts and pings the primary before handing the client out.
func DialMongo(uri string, timeout time.Duration) DocumentDialer {
	return func(ctx context.Context) (*mongo.Client, error) {
		return ConnectMongo(ctx, uri, timeout)
	}
}

// ConnectMongo builds a verified client. A client whose ping fails is
// disconnected before the error is returned.
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		opts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	if err := pingMongo(pctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func pingMongo(ctx context.Context, c *mongo.Client) error {
	return c.Ping(ctx, readpref.Primary())
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
