package config

import "time"

// Database holds pool tuning and startup migration settings.
type Database struct {
	MaxOpenConn     int           `validate:"gte=0"`
	MaxIdleConn     int           `validate:"gte=0"`
	ConnMaxLifeTime time.Duration `validate:"gte=0s"`
	AutoMigrate     bool
}

func getDatabaseConfig(r *reader) *Database {
	return &Database{
		MaxOpenConn:     r.int(KeyDBMaxOpenConns),
		MaxIdleConn:     r.int(KeyDBMaxIdleConns),
		ConnMaxLifeTime: r.duration(KeyDBConnMaxLifetime),
		AutoMigrate:     r.bool(KeyDBAutoMigrate),
	}
}
