package data_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spoton-app/spoton/config"
	"github.com/spoton-app/spoton/data"
	_ "github.com/spoton-app/spoton/data/sqlite"
	"github.com/spoton-app/spoton/logging/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, opts ...data.Option) *data.Engine {
	t.Helper()
	url := "sqlite:///" + filepath.Join(t.TempDir(), "spoton.db")
	eng, err := data.NewEngine(url, false, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Dispose() })

	require.NoError(t, eng.WithSession(context.Background(), func(ctx context.Context, s *data.Session) error {
		_, err := s.Exec(ctx, "CREATE TABLE teams (id TEXT PRIMARY KEY, name TEXT NOT NULL)")
		return err
	}))
	return eng
}

func countTeams(t *testing.T, eng *data.Engine) int {
	t.Helper()
	var n int
	require.NoError(t, eng.WithSession(context.Background(), func(ctx context.Context, s *data.Session) error {
		return s.QueryRow(ctx, "SELECT COUNT(*) FROM teams").Scan(&n)
	}))
	return n
}

func TestWithSessionReleasesConnection(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()
	errBoom := errors.New("boom")

	t.Run("success", func(t *testing.T) {
		err := eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
			assert.Equal(t, 1, eng.Stats().InUse)
			_, err := s.Exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", "t1", "Rovers")
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, 0, eng.Stats().InUse)
	})

	t.Run("error", func(t *testing.T) {
		err := eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
			return errBoom
		})
		assert.ErrorIs(t, err, errBoom)
		assert.Equal(t, 0, eng.Stats().InUse)
	})

	t.Run("panic", func(t *testing.T) {
		assert.PanicsWithValue(t, "kaboom", func() {
			_ = eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
				require.NoError(t, s.Begin(ctx, nil))
				_, err := s.Exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", "t2", "United")
				require.NoError(t, err)
				panic("kaboom")
			})
		})
		assert.Equal(t, 0, eng.Stats().InUse)
		assert.Equal(t, 1, countTeams(t, eng), "open transaction must be rolled back")
	})

	t.Run("cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		err := eng.WithSession(cctx, func(ctx context.Context, s *data.Session) error {
			if err := s.Begin(ctx, nil); err != nil {
				return err
			}
			if _, err := s.Exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", "t3", "City"); err != nil {
				return err
			}
			cancel()
			return ctx.Err()
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Eventually(t, func() bool { return eng.Stats().InUse == 0 }, time.Second, 10*time.Millisecond)
		assert.Equal(t, 1, countTeams(t, eng))
	})

	// runAsync reports the panic value and error of WithSession, or fails
	// the test if the session does not close in time.
	runAsync := func(t *testing.T, fn func(ctx context.Context, s *data.Session) error) (any, error) {
		t.Helper()
		type result struct {
			err       error
			recovered any
		}
		done := make(chan result, 1)
		go func() {
			var r result
			defer func() {
				r.recovered = recover()
				done <- r
			}()
			r.err = eng.WithSession(ctx, fn)
		}()
		select {
		case r := <-done:
			return r.recovered, r.err
		case <-time.After(5 * time.Second):
			require.FailNow(t, "session close blocked", "in use: %d", eng.Stats().InUse)
			return nil, nil
		}
	}

	t.Run("rows left open on error", func(t *testing.T) {
		recovered, err := runAsync(t, func(ctx context.Context, s *data.Session) error {
			rows, err := s.Query(ctx, "SELECT id FROM teams")
			if err != nil {
				return err
			}
			assert.True(t, rows.Next())
			return errBoom
		})
		assert.Nil(t, recovered)
		assert.ErrorIs(t, err, errBoom)
		assert.Eventually(t, func() bool { return eng.Stats().InUse == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("rows left open on panic", func(t *testing.T) {
		recovered, _ := runAsync(t, func(ctx context.Context, s *data.Session) error {
			if _, err := s.Query(ctx, "SELECT id FROM teams"); err != nil {
				return err
			}
			_ = s.QueryRow(ctx, "SELECT name FROM teams WHERE id = ?", "t1")
			panic("kaboom")
		})
		assert.Equal(t, "kaboom", recovered)
		assert.Eventually(t, func() bool { return eng.Stats().InUse == 0 }, time.Second, 10*time.Millisecond)
	})

	t.Run("rows left open in transaction", func(t *testing.T) {
		recovered, err := runAsync(t, func(ctx context.Context, s *data.Session) error {
			if err := s.Begin(ctx, nil); err != nil {
				return err
			}
			if _, err := s.Exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", "t4", "Athletic"); err != nil {
				return err
			}
			if _, err := s.Query(ctx, "SELECT id FROM teams"); err != nil {
				return err
			}
			return errBoom
		})
		assert.Nil(t, recovered)
		assert.ErrorIs(t, err, errBoom)
		assert.Eventually(t, func() bool { return eng.Stats().InUse == 0 }, time.Second, 10*time.Millisecond)
		assert.Equal(t, 1, countTeams(t, eng), "open transaction must be rolled back")
	})
}

func TestWithSessionBindsContext(t *testing.T) {
	eng := newTestEngine(t)

	err := eng.WithSession(context.Background(), func(ctx context.Context, s *data.Session) error {
		got, ok := data.SessionFromContext(ctx)
		assert.True(t, ok)
		assert.Same(t, s, got)
		return nil
	})
	require.NoError(t, err)

	_, ok := data.SessionFromContext(context.Background())
	assert.False(t, ok)
}

func TestSessionWithTx(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	err := eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
		require.NoError(t, s.WithTx(ctx, func(ctx context.Context) error {
			_, err := s.Exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", "t1", "Rovers")
			return err
		}))
		assert.False(t, s.InTx())

		// the session stays usable after a commit
		var name string
		require.NoError(t, s.QueryRow(ctx, "SELECT name FROM teams WHERE id = ?", "t1").Scan(&name))
		assert.Equal(t, "Rovers", name)

		errRollback := errors.New("rollback")
		err := s.WithTx(ctx, func(ctx context.Context) error {
			if _, err := s.Exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", "t2", "United"); err != nil {
				return err
			}
			return errRollback
		})
		assert.ErrorIs(t, err, errRollback)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countTeams(t, eng))
}

func TestSessionTransactionState(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	s, err := eng.Acquire(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, s.Commit(), data.ErrNoTx)
	assert.ErrorIs(t, s.Rollback(), data.ErrNoTx)

	require.NoError(t, s.Begin(ctx, nil))
	assert.ErrorIs(t, s.Begin(ctx, nil), data.ErrTxInProgress)
	require.NoError(t, s.Rollback())

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err = s.Exec(ctx, "SELECT 1")
	assert.ErrorIs(t, err, data.ErrSessionClosed)
	_, err = s.Query(ctx, "SELECT 1")
	assert.ErrorIs(t, err, data.ErrSessionClosed)
	assert.ErrorIs(t, s.Begin(ctx, nil), data.ErrSessionClosed)
	assert.Error(t, s.QueryRow(ctx, "SELECT 1").Scan(new(int)))
	assert.Equal(t, 0, eng.Stats().InUse)
}

func TestSessionQuery(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	err := eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
		for _, id := range []string{"a", "b", "c"} {
			if _, err := s.Exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", id, "team "+id); err != nil {
				return err
			}
		}

		rows, err := s.Query(ctx, "SELECT id FROM teams ORDER BY id")
		if err != nil {
			return err
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
		return rows.Err()
	})
	require.NoError(t, err)
}

func TestDispose(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, eng.Dispose())
	require.NoError(t, eng.Dispose())
	assert.True(t, eng.Disposed())

	_, err := eng.Acquire(ctx)
	assert.ErrorIs(t, err, data.ErrEngineDisposed)

	err = eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
		t.Fatal("must not run on a disposed engine")
		return nil
	})
	assert.ErrorIs(t, err, data.ErrEngineDisposed)
	assert.ErrorIs(t, eng.Ping(ctx), data.ErrEngineDisposed)
}

func TestEngineAccessors(t *testing.T) {
	eng := newTestEngine(t, data.WithPool(data.PoolConfig{MaxOpenConns: 3, MaxIdleConns: 2}))

	assert.Equal(t, "sqlite3", eng.Dialect())
	assert.Equal(t, data.DriverSQLite, eng.URL().Driver)
	assert.NotNil(t, eng.DB())
	assert.Equal(t, 3, eng.Stats().MaxOpenConnections)
	assert.NoError(t, eng.Ping(context.Background()))
}

func TestEcho(t *testing.T) {
	l, cleanup, err := logger.New(&config.Logger{Level: "info", Format: "json", Output: "stdout"})
	require.NoError(t, err)
	defer cleanup()
	var buf bytes.Buffer
	l.SetOutput(&buf)

	for _, echo := range []bool{false, true} {
		buf.Reset()
		url := "sqlite:///" + filepath.Join(t.TempDir(), "echo.db")
		eng, err := data.NewEngine(url, echo, data.WithLogger(l))
		require.NoError(t, err)

		err = eng.WithSession(context.Background(), func(ctx context.Context, s *data.Session) error {
			_, err := s.Exec(ctx, "CREATE TABLE players (id INTEGER)")
			return err
		})
		require.NoError(t, err)

		if echo {
			assert.Contains(t, buf.String(), `"sql":"CREATE TABLE players (id INTEGER)"`)
			assert.Contains(t, buf.String(), `"duration"`)
		} else {
			assert.NotContains(t, buf.String(), "CREATE TABLE players")
		}
		require.NoError(t, eng.Dispose())
	}
}

func TestProvideEngine(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL: "sqlite:///" + filepath.Join(t.TempDir(), "provided.db"),
		Database:    &config.Database{MaxOpenConn: 4, MaxIdleConn: 2},
	}

	eng, cleanup, err := data.ProvideEngine(cfg, logger.StdLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, eng.Stats().MaxOpenConnections)

	cleanup()
	assert.True(t, eng.Disposed())
	cleanup()

	cfg.DatabaseURL = "not a url"
	_, _, err = data.ProvideEngine(cfg, logger.StdLogger())
	assert.ErrorIs(t, err, data.ErrInvalidURL)
}
