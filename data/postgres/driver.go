// Package postgres provides a PostgreSQL driver for spoton/data.
//
// This driver uses pgx (github.com/jackc/pgx/v5) through its database/sql
// adapter. It registers itself automatically when imported:
//
//	import _ "github.com/spoton-app/spoton/data/postgres"
//
// The URL schemes postgres://, postgresql:// and postgresql+asyncpg:// all
// select this driver.
package postgres

import (
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spoton-app/spoton/data"
)

// driver implements data.DatabaseDriver for PostgreSQL.
type driver struct{}

// Name returns the driver identifier.
func (d *driver) Name() string {
	return data.DriverPostgres
}

// Dialect returns the ent dialect.
func (d *driver) Dialect() string {
	return dialect.Postgres
}

// Open parses the connection string with pgx and opens a pool. pgx does not
// connect until the first connection is requested.
func (d *driver) Open(u *data.URL, pool data.PoolConfig) (*sql.DB, error) {
	cfg, err := ParseConfig(u)
	if err != nil {
		return nil, err
	}

	db := stdlib.OpenDB(*cfg)
	pool.Apply(db)
	return db, nil
}

// ParseConfig converts u into a pgx connection config.
func ParseConfig(u *data.URL) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(u.StdURL("postgres"))
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return cfg, nil
}

func init() {
	data.RegisterDatabaseDriver(&driver{})
}
