package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("database session closed")
	// ErrTxInProgress is returned by Begin when the session already has a transaction.
	ErrTxInProgress = errors.New("transaction already in progress")
	// ErrNoTx is returned by Commit and Rollback when no transaction is open.
	ErrNoTx = errors.New("no transaction in progress")
)

// querier is implemented by *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Session is a unit of work bound to one pooled connection. Statements run
// inside the open transaction if there is one. A session belongs to the
// goroutine that acquired it.
type Session struct {
	engine *Engine
	conn   *sql.Conn
	tx     *sql.Tx
	closed bool

	// cancels closes result sets still open when the session is closed.
	cancels []context.CancelFunc
}

// scope derives a context that Close cancels.
func (s *Session) scope(ctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	s.cancels = append(s.cancels, cancel)
	return ctx
}

func (s *Session) querier() (querier, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	return s.conn, nil
}

// Exec executes a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q, err := s.querier()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := q.ExecContext(ctx, query, args...)
	s.engine.echoStatement(ctx, query, args, time.Since(start), err)
	return res, err
}

// Query executes a statement that returns rows.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	q, err := s.querier()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	rows, err := q.QueryContext(s.scope(ctx), query, args...)
	s.engine.echoStatement(ctx, query, args, time.Since(start), err)
	return rows, err
}

// QueryRow executes a statement expected to return at most one row. On a
// closed session the row's Scan reports sql.ErrConnDone.
func (s *Session) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	q, err := s.querier()
	if err != nil {
		return s.conn.QueryRowContext(ctx, query, args...)
	}
	start := time.Now()
	row := q.QueryRowContext(s.scope(ctx), query, args...)
	s.engine.echoStatement(ctx, query, args, time.Since(start), row.Err())
	return row
}

// Begin starts a transaction on the session's connection.
func (s *Session) Begin(ctx context.Context, opts *sql.TxOptions) error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return ErrTxInProgress
	}
	tx, err := s.conn.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Commit commits the open transaction. The session stays usable afterwards.
func (s *Session) Commit() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return ErrNoTx
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

// Rollback aborts the open transaction.
func (s *Session) Rollback() error {
	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return ErrNoTx
	}
	tx := s.tx
	s.tx = nil
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}

// InTx reports whether a transaction is open.
func (s *Session) InTx() bool {
	return s.tx != nil
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back when it returns an error or panics.
func (s *Session) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if err := s.Begin(ctx, nil); err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = s.Rollback()
			panic(p)
		}
	}()

	if err = fn(ctx); err != nil {
		if rbErr := s.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rollback err: %v", err, rbErr)
		}
		return err
	}

	return s.Commit()
}

// Close closes result sets left open, rolls back any open transaction and
// returns the connection to the pool. Closing twice is a no-op.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	for _, cancel := range s.cancels {
		cancel()
	}
	s.cancels = nil

	var errs []error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
		s.tx = nil
	}
	if err := s.conn.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		errs = append(errs, fmt.Errorf("release connection: %w", err))
	}
	return errors.Join(errs...)
}
