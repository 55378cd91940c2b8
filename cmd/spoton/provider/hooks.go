package provider

import (
	"context"

	"github.com/spoton-app/spoton/app"
	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/data"
	"github.com/spoton-app/spoton/data/schema"
	"github.com/spoton-app/spoton/logging/logger"

	_ "github.com/spoton-app/spoton/data/mysql"
	_ "github.com/spoton-app/spoton/data/postgres"
	_ "github.com/spoton-app/spoton/data/sqlite"
)

// provideHooks returns the lifecycle hooks in start order.
func provideHooks(cfg *config.Config, eng *data.Engine, l *logger.Logger) []app.Hook {
	return []app.Hook{
		DatabaseHook(eng),
		SchemaHook(cfg, eng, l),
	}
}

// DatabaseHook disposes the engine on shutdown.
func DatabaseHook(eng *data.Engine) app.Hook {
	return app.Hook{
		Name: "database",
		OnStop: func(ctx context.Context) error {
			return eng.Dispose()
		},
	}
}

// SchemaHook applies pending migrations on startup when DB_AUTO_MIGRATE is set.
func SchemaHook(cfg *config.Config, eng *data.Engine, l *logger.Logger) app.Hook {
	return app.Hook{
		Name: "schema",
		OnStart: func(ctx context.Context) error {
			if cfg.Database != nil && !cfg.Database.AutoMigrate {
				l.Info(ctx, "automatic migration disabled")
				return nil
			}
			applied, err := schema.Migrate(ctx, eng)
			if err != nil {
				return err
			}
			l.Infof(ctx, "schema up to date, %d migration(s) applied", applied)
			return nil
		},
	}
}
