package schema

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/spoton-app/spoton/data"
)

// Migrate applies every pending migration, each in its own transaction, and
// returns how many were applied. Running it again is a no-op.
func Migrate(ctx context.Context, eng *data.Engine) (applied int, err error) {
	d := eng.Dialect()
	c, err := typesFor(d)
	if err != nil {
		return 0, err
	}

	err = eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
		done, err := appliedVersions(ctx, s, c)
		if err != nil {
			return err
		}

		for _, m := range migrations {
			if done[m.Version] {
				continue
			}
			if err := s.WithTx(ctx, func(ctx context.Context) error {
				for _, stmt := range m.render(c) {
					if _, err := s.Exec(ctx, stmt); err != nil {
						return err
					}
				}
				return record(ctx, s, d, m)
			}); err != nil {
				return fmt.Errorf("schema: migration %d %s: %w", m.Version, m.Name, err)
			}
			applied++
		}
		return nil
	})
	return applied, err
}

// Pending returns the migrations not yet applied. The ledger table is
// created if missing.
func Pending(ctx context.Context, eng *data.Engine) ([]Migration, error) {
	c, err := typesFor(eng.Dialect())
	if err != nil {
		return nil, err
	}

	var pending []Migration
	err = eng.WithSession(ctx, func(ctx context.Context, s *data.Session) error {
		done, err := appliedVersions(ctx, s, c)
		if err != nil {
			return err
		}
		for _, m := range migrations {
			if !done[m.Version] {
				pending = append(pending, m)
			}
		}
		return nil
	})
	return pending, err
}

// SQL renders the ledger table and every migration for dialect.
func SQL(dialect string) ([]string, error) {
	c, err := typesFor(dialect)
	if err != nil {
		return nil, err
	}
	stmts := []string{ledger(c)}
	for _, m := range migrations {
		stmts = append(stmts, m.render(c)...)
	}
	return stmts, nil
}

func appliedVersions(ctx context.Context, s *data.Session, c columnTypes) (map[int]bool, error) {
	if _, err := s.Exec(ctx, ledger(c)); err != nil {
		return nil, fmt.Errorf("schema: create %s: %w", LedgerTable, err)
	}

	b := entsql.Dialect(c.dialect)
	query, args := b.Select("version").From(b.Table(LedgerTable)).Query()
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", LedgerTable, err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

func record(ctx context.Context, s *data.Session, d string, m Migration) error {
	query, args := entsql.Dialect(d).
		Insert(LedgerTable).
		Columns("version", "name", "applied_at").
		Values(m.Version, m.Name, time.Now().UTC()).
		Query()
	_, err := s.Exec(ctx, query, args...)
	return err
}
