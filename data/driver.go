package data

import (
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"
)

// DatabaseDriver defines the interface for relational database drivers.
// Following the design pattern of database/sql, drivers register themselves
// from init functions and are looked up by the normalised URL scheme.
type DatabaseDriver interface {
	// Name returns the driver identifier (e.g., "postgres", "mysql", "sqlite")
	Name() string

	// Dialect returns the SQL dialect name as used by entgo.io/ent/dialect.
	Dialect() string

	// Open creates the connection pool for u without connecting eagerly.
	// Malformed connection parameters are reported here.
	Open(u *URL, pool PoolConfig) (*sql.DB, error)
}

// PoolConfig tunes the connection pool. Zero values keep database/sql defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Apply applies the pool configuration to db.
func (p PoolConfig) Apply(db *sql.DB) {
	if p.MaxIdleConns > 0 {
		db.SetMaxIdleConns(p.MaxIdleConns)
	}
	if p.MaxOpenConns > 0 {
		db.SetMaxOpenConns(p.MaxOpenConns)
	}
	if p.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(p.ConnMaxLifetime)
	}
}

var (
	databaseDrivers   = make(map[string]DatabaseDriver)
	databaseDriversMu sync.RWMutex
)

// RegisterDatabaseDriver makes a database driver available by the provided name.
// It is intended to be called from the init function in driver packages.
//
// If RegisterDatabaseDriver is called twice with the same name or if driver is nil,
// it panics.
func RegisterDatabaseDriver(driver DatabaseDriver) {
	databaseDriversMu.Lock()
	defer databaseDriversMu.Unlock()

	if driver == nil {
		panic("data: RegisterDatabaseDriver driver is nil")
	}

	name := driver.Name()
	if name == "" {
		panic("data: RegisterDatabaseDriver driver name is empty")
	}

	if _, exists := databaseDrivers[name]; exists {
		panic(fmt.Sprintf("data: RegisterDatabaseDriver called twice for driver %s", name))
	}

	databaseDrivers[name] = driver
}

// GetDatabaseDriver retrieves a registered database driver by name.
// It returns an error with helpful instructions if the driver is not found.
func GetDatabaseDriver(name string) (DatabaseDriver, error) {
	databaseDriversMu.RLock()
	defer databaseDriversMu.RUnlock()

	driver, ok := databaseDrivers[name]
	if !ok {
		return nil, fmt.Errorf(
			"data: database driver %q not registered\n\n"+
				"Did you forget to import the driver package?\n"+
				"Add to your imports:\n"+
				"    _ \"github.com/spoton-app/spoton/data/%s\"\n\n"+
				"Available drivers: %v",
			name, name, listDatabaseDriversLocked(),
		)
	}

	return driver, nil
}

// ListDatabaseDrivers returns the names of all registered drivers, sorted.
func ListDatabaseDrivers() []string {
	databaseDriversMu.RLock()
	defer databaseDriversMu.RUnlock()
	return listDatabaseDriversLocked()
}

func listDatabaseDriversLocked() []string {
	names := make([]string, 0, len(databaseDrivers))
	for name := range databaseDrivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
