package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays environment variables on top of cfg. Unset or empty
// variables leave the current value untouched.
func ApplyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	port := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 || n > 65535 {
			return fmt.Errorf("invalid %s %q", key, v)
		}
		*dst = n
		return nil
	}

	str("MYSQL_HOST", &cfg.Catalog.Host)
	if err := port("MYSQL_PORT", &cfg.Catalog.Port); err != nil {
		return err
	}
	str("MYSQL_DB_NAME", &cfg.Catalog.Database)
	str("MYSQL_USERNAME", &cfg.Catalog.User)
	str("MYSQL_PASSWORD", &cfg.Catalog.Password)

	str("MONGO_URI", &cfg.Stats.MongoURI)
	str("MONGO_HOST", &cfg.Stats.MongoHost)
	if err := port("MONGO_PORT", &cfg.Stats.MongoPort); err != nil {
		return err
	}
	str("MONGO_DB_NAME", &cfg.Stats.Database)
	str("MONGO_USERNAME", &cfg.Stats.MongoUser)
	str("MONGO_PASSWORD", &cfg.Stats.MongoPassword)

	str("FILMFINDER_JOURNAL", &cfg.Stats.JournalPath)
	str("FILMFINDER_LOG_LEVEL", &cfg.Logging.Level)

	return nil
}

// DSN returns the database/sql data source name for the catalog driver.
func (c CatalogConfig) DSN() string {
	if c.Driver == "sqlite3" {
		return c.Path + "?_foreign_keys=on"
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.ParseTime = true
	mc.Timeout = c.QueryTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// URI returns the MongoDB connection string. An explicit MongoURI wins
// over the host/port/credential fields.
func (s StatsConfig) URI() string {
	if s.MongoURI != "" {
		return s.MongoURI
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(s.MongoHost, strconv.Itoa(s.MongoPort)),
		Path:   "/",
	}
	if s.MongoUser != "" && s.MongoPassword != "" {
		u.User = url.UserPassword(s.MongoUser, s.MongoPassword)
	}
	return u.String()
}

// Redacted returns the URI with any password masked, for display.
func (s StatsConfig) Redacted() string {
	u, err := url.Parse(s.URI())
	if err != nil {
		return "<invalid uri>"
	}
	return u.Redacted()
}
