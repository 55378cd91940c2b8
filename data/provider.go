package data

import (
	"context"

	"github.com/google/wire"
	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/logging/logger"
)

// ProviderSet is the data providers.
var ProviderSet = wire.NewSet(ProvideEngine)

// ProvideEngine creates the process engine from settings. The cleanup
// disposes it; Dispose is idempotent so an earlier shutdown hook is fine.
func ProvideEngine(cfg *config.Config, l *logger.Logger) (*Engine, func(), error) {
	pool := PoolConfig{}
	if cfg.Database != nil {
		pool = PoolConfig{
			MaxOpenConns:    cfg.Database.MaxOpenConn,
			MaxIdleConns:    cfg.Database.MaxIdleConn,
			ConnMaxLifetime: cfg.Database.ConnMaxLifeTime,
		}
	}

	eng, err := NewEngine(cfg.DatabaseURL, cfg.DBEcho, WithLogger(l), WithPool(pool))
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := eng.Dispose(); err != nil {
			l.Errorf(context.Background(), "cleanup database engine: %v", err)
		}
	}
	return eng, cleanup, nil
}
