// Package mysql provides a MySQL driver for spoton/data.
//
// This driver uses go-sql-driver/mysql. It registers itself automatically
// when imported:
//
//	import _ "github.com/spoton-app/spoton/data/mysql"
//
// The URL schemes mysql://, mariadb:// and mysql+aiomysql:// all select this
// driver. Query parameters are passed through as go-sql-driver DSN parameters.
package mysql

import (
	"database/sql"
	"fmt"
	"net"

	"entgo.io/ent/dialect"
	"github.com/go-sql-driver/mysql"
	"github.com/spoton-app/spoton/data"
)

const defaultPort = "3306"

// driver implements data.DatabaseDriver for MySQL.
type driver struct{}

// Name returns the driver identifier.
func (d *driver) Name() string {
	return data.DriverMySQL
}

// Dialect returns the ent dialect.
func (d *driver) Dialect() string {
	return dialect.MySQL
}

// Open builds a connector from u. The server is not contacted until the first
// connection is requested.
func (d *driver) Open(u *data.URL, pool data.PoolConfig) (*sql.DB, error) {
	cfg, err := ParseConfig(u)
	if err != nil {
		return nil, err
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}

	db := sql.OpenDB(connector)
	pool.Apply(db)
	return db, nil
}

// ParseConfig converts u into a go-sql-driver config. parseTime defaults to
// true so DATETIME columns scan into time.Time.
func ParseConfig(u *data.URL) (*mysql.Config, error) {
	dsn := "/"
	if len(u.Query) > 0 {
		dsn += "?" + u.Query.Encode()
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: %w", err)
	}
	if !u.Query.Has("parseTime") {
		cfg.ParseTime = true
	}

	addr := u.Host
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, defaultPort)
	}

	cfg.User = u.Username
	cfg.Passwd = u.Password
	cfg.Net = "tcp"
	cfg.Addr = addr
	cfg.DBName = u.Database
	return cfg, nil
}

func init() {
	data.RegisterDatabaseDriver(&driver{})
}
