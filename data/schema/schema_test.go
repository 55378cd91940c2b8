package schema

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"entgo.io/ent/dialect"
	"github.com/spoton-app/spoton/data"
	_ "github.com/spoton-app/spoton/data/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *data.Engine {
	t.Helper()
	eng, err := data.NewEngine("sqlite:///"+filepath.Join(t.TempDir(), "spoton.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = eng.Dispose() })
	return eng
}

func tableNames(t *testing.T, eng *data.Engine) []string {
	t.Helper()
	var names []string
	err := eng.WithSession(context.Background(), func(ctx context.Context, s *data.Session) error {
		rows, err := s.Query(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	require.NoError(t, err)
	return names
}

func TestMigrate(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	pending, err := Pending(ctx, eng)
	require.NoError(t, err)
	assert.Len(t, pending, len(migrations))

	applied, err := Migrate(ctx, eng)
	require.NoError(t, err)
	assert.Equal(t, len(migrations), applied)
	assert.Equal(t, []string{"matches", LedgerTable, "teams", "users"}, tableNames(t, eng))

	// idempotent
	applied, err = Migrate(ctx, eng)
	require.NoError(t, err)
	assert.Zero(t, applied)

	pending, err = Pending(ctx, eng)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, 0, eng.Stats().InUse)
}

func TestMigrateResumesFromLedger(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	err := eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
		c, _ := typesFor(dialect.SQLite)
		if _, err := s.Exec(ctx, ledger(c)); err != nil {
			return err
		}
		for _, stmt := range createUsers(c) {
			if _, err := s.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		return record(ctx, s, dialect.SQLite, migrations[0])
	})
	require.NoError(t, err)

	applied, err := Migrate(ctx, eng)
	require.NoError(t, err)
	assert.Equal(t, len(migrations)-1, applied)
}

func TestDefaults(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := Migrate(ctx, eng)
	require.NoError(t, err)

	err = eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
		if _, err := s.Exec(ctx, "INSERT INTO users (id, nickname) VALUES (?, ?)", "u1", "keeper"); err != nil {
			return err
		}
		var score int
		if err := s.QueryRow(ctx, "SELECT credit_score FROM users WHERE id = ?", "u1").Scan(&score); err != nil {
			return err
		}
		assert.Equal(t, DefaultCreditScore, score)

		if _, err := s.Exec(ctx, "INSERT INTO matches (id, home_team_id, match_date) VALUES (?, ?, ?)",
			"m1", "t1", "2026-05-01 18:00:00"); err != nil {
			return err
		}
		var status string
		if err := s.QueryRow(ctx, "SELECT status FROM matches WHERE id = ?", "m1").Scan(&status); err != nil {
			return err
		}
		assert.Equal(t, MatchPending, status)

		_, err := s.Exec(ctx, "UPDATE matches SET status = ? WHERE id = ?", "postponed", "m1")
		assert.Error(t, err, "status outside the allowed set must be rejected")
		return nil
	})
	require.NoError(t, err)
}

func TestSQL(t *testing.T) {
	for _, d := range []string{dialect.Postgres, dialect.MySQL, dialect.SQLite} {
		t.Run(d, func(t *testing.T) {
			stmts, err := SQL(d)
			require.NoError(t, err)
			require.NotEmpty(t, stmts)
			assert.Contains(t, stmts[0], "CREATE TABLE IF NOT EXISTS "+LedgerTable)

			all := strings.Join(stmts, "\n")
			for _, table := range []string{"users", "teams", "matches"} {
				assert.Contains(t, all, "CREATE TABLE IF NOT EXISTS "+table)
			}
			assert.Contains(t, all, "idx_matches_home_team_id")
		})
	}

	pg, err := SQL(dialect.Postgres)
	require.NoError(t, err)
	assert.Contains(t, strings.Join(pg, "\n"), "TIMESTAMPTZ")

	my, err := SQL(dialect.MySQL)
	require.NoError(t, err)
	joined := strings.Join(my, "\n")
	assert.Contains(t, joined, "ENGINE=InnoDB")
	assert.Contains(t, joined, "KEY idx_users_team_id (team_id)")
	assert.NotContains(t, joined, "CREATE INDEX")

	_, err = SQL("oracle")
	assert.Error(t, err)
}

func TestMigrationsOrdered(t *testing.T) {
	ms := Migrations()
	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version)
	}

	stmts, err := ms[0].Statements(dialect.Postgres)
	require.NoError(t, err)
	assert.Len(t, stmts, 1)

	_, err = ms[0].Statements("oracle")
	assert.Error(t, err)
}
