package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spoton-app/spoton/logging/logger"
)

// ErrEngineDisposed is returned when a session is requested from a disposed engine.
var ErrEngineDisposed = errors.New("database engine disposed")

// Engine is the process-wide connection pool.
type Engine struct {
	db     *sql.DB
	url    *URL
	driver DatabaseDriver
	echo   bool
	pool   PoolConfig
	logger *logger.Logger

	disposeOnce sync.Once
	disposeErr  error
	disposed    atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for statement echo and lifecycle messages.
func WithLogger(l *logger.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithPool sets the pool tuning.
func WithPool(p PoolConfig) Option {
	return func(e *Engine) { e.pool = p }
}

// NewEngine creates the engine for rawURL. No connection is made until the
// first session is acquired. When echo is true every statement executed
// through a session is logged.
func NewEngine(rawURL string, echo bool, opts ...Option) (*Engine, error) {
	u, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}

	driver, err := GetDatabaseDriver(u.Driver)
	if err != nil {
		return nil, err
	}

	e := &Engine{url: u, driver: driver, echo: echo}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.StdLogger()
	}

	db, err := driver.Open(u, e.pool)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	e.db = db

	e.logger.WithContextFields(context.Background(), logrus.Fields{
		"driver": driver.Name(),
		"url":    u.Redacted(),
		"echo":   echo,
	}).Debug("database engine created")

	return e, nil
}

// Acquire checks a connection out of the pool and wraps it in a session.
// The caller must Close the session; prefer WithSession.
func (e *Engine) Acquire(ctx context.Context) (*Session, error) {
	if e.disposed.Load() {
		return nil, ErrEngineDisposed
	}

	conn, err := e.db.Conn(ctx)
	if err != nil {
		if e.disposed.Load() {
			return nil, ErrEngineDisposed
		}
		return nil, fmt.Errorf("failed to acquire connection: %w", err)
	}

	return &Session{engine: e, conn: conn}, nil
}

// WithSession runs fn with a fresh session and releases it when fn returns,
// fails or panics. The session is also available from the ctx passed to fn.
func (e *Engine) WithSession(ctx context.Context, fn func(ctx context.Context, s *Session) error) (err error) {
	s, err := e.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(withSession(ctx, s), s)
}

// Ping verifies the database is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if e.disposed.Load() {
		return ErrEngineDisposed
	}
	return e.db.PingContext(ctx)
}

// Stats returns pool statistics. InUse is the number of checked-out connections.
func (e *Engine) Stats() sql.DBStats {
	return e.db.Stats()
}

// Dialect returns the ent dialect name of the engine's driver.
func (e *Engine) Dialect() string {
	return e.driver.Dialect()
}

// URL returns the parsed database URL.
func (e *Engine) URL() *URL {
	return e.url
}

// DB returns the underlying pool.
func (e *Engine) DB() *sql.DB {
	return e.db
}

// Disposed reports whether Dispose has been called.
func (e *Engine) Disposed() bool {
	return e.disposed.Load()
}

// Dispose closes the pool. Only the first call has an effect; later calls
// return the first call's result.
func (e *Engine) Dispose() error {
	e.disposeOnce.Do(func() {
		e.disposed.Store(true)
		e.disposeErr = e.db.Close()
		if e.disposeErr != nil {
			e.logger.Errorf(context.Background(), "failed to dispose database engine: %v", e.disposeErr)
			return
		}
		e.logger.Info(context.Background(), "database engine disposed")
	})
	return e.disposeErr
}

// echoStatement logs a statement when echo is enabled.
func (e *Engine) echoStatement(ctx context.Context, query string, args []any, elapsed time.Duration, err error) {
	if !e.echo {
		return
	}
	entry := e.logger.WithContextFields(ctx, logrus.Fields{
		"sql":      query,
		"args":     args,
		"duration": elapsed.String(),
	})
	if err != nil {
		entry.WithError(err).Error("statement failed")
		return
	}
	entry.Info("statement")
}
