// Package sqlite provides a SQLite driver for spoton/data.
//
// This driver uses modernc.org/sqlite, a cgo-free port of SQLite. It
// registers itself automatically when imported:
//
//	import _ "github.com/spoton-app/spoton/data/sqlite"
//
// Example URLs:
//
//	sqlite:///spoton.db            // relative path
//	sqlite:////var/lib/spoton.db   // absolute path
//	sqlite://                      // in-memory database
//
// Query parameters are passed to modernc.org/sqlite, so _pragma values can be
// given in the URL. Without any, busy_timeout and foreign_keys are enabled.
package sqlite

import (
	"database/sql"
	"fmt"
	"net/url"

	"entgo.io/ent/dialect"
	"github.com/spoton-app/spoton/data"

	_ "modernc.org/sqlite" // SQLite driver
)

var defaultPragmas = []string{"busy_timeout(5000)", "foreign_keys(1)"}

// driver implements data.DatabaseDriver for SQLite.
type driver struct{}

// Name returns the driver identifier.
func (d *driver) Name() string {
	return data.DriverSQLite
}

// Dialect returns the ent dialect.
func (d *driver) Dialect() string {
	return dialect.SQLite
}

// Open opens the database file lazily. An in-memory database lives as long as
// its connection, so the pool is pinned to a single connection.
func (d *driver) Open(u *data.URL, pool data.PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("sqlite", DSN(u))
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}

	if u.IsMemory() {
		pool.MaxOpenConns = 1
		pool.MaxIdleConns = 1
		pool.ConnMaxLifetime = 0
	}
	pool.Apply(db)
	return db, nil
}

// DSN renders the modernc.org/sqlite data source name for u.
func DSN(u *data.URL) string {
	query := url.Values{}
	for k, vs := range u.Query {
		query[k] = append([]string(nil), vs...)
	}
	if _, ok := query["_pragma"]; !ok {
		query["_pragma"] = append([]string(nil), defaultPragmas...)
	}
	return u.Database + "?" + query.Encode()
}

func init() {
	data.RegisterDatabaseDriver(&driver{})
}
