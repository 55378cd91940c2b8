// Package schema holds the ordered table migrations for users, teams and
// matches, and applies them through a data.Engine.
//
// Applied versions are recorded in the schema_migrations table, so Migrate
// only runs what is missing. Every statement is also written with
// IF NOT EXISTS and re-running one is harmless.
package schema

import (
	"fmt"
	"slices"
	"strings"

	"entgo.io/ent/dialect"
)

// LedgerTable records applied migrations.
const LedgerTable = "schema_migrations"

// Match statuses.
const (
	MatchPending   = "pending"
	MatchConfirmed = "confirmed"
	MatchCompleted = "completed"
	MatchCancelled = "cancelled"
)

// DefaultCreditScore is the credit score of a new user.
const DefaultCreditScore = 100

// Migration is one schema step.
type Migration struct {
	Version int
	Name    string
	render  func(c columnTypes) []string
}

// Statements renders the migration's DDL for an ent dialect name.
func (m Migration) Statements(dialect string) ([]string, error) {
	c, err := typesFor(dialect)
	if err != nil {
		return nil, err
	}
	return m.render(c), nil
}

var migrations = []Migration{
	{Version: 1, Name: "create_users", render: createUsers},
	{Version: 2, Name: "create_teams", render: createTeams},
	{Version: 3, Name: "create_matches", render: createMatches},
	{Version: 4, Name: "create_indexes", render: createIndexes},
}

// Migrations returns the migrations in version order.
func Migrations() []Migration {
	return slices.Clone(migrations)
}

// columnTypes holds the dialect-specific bits of the DDL.
type columnTypes struct {
	dialect   string
	timestamp string
	// suffix is appended after the closing parenthesis of CREATE TABLE.
	suffix string
	// inlineIndexes is set when indexes are declared inside CREATE TABLE.
	inlineIndexes bool
}

func typesFor(d string) (columnTypes, error) {
	switch d {
	case dialect.Postgres:
		return columnTypes{dialect: d, timestamp: "TIMESTAMPTZ"}, nil
	case dialect.SQLite:
		return columnTypes{dialect: d, timestamp: "DATETIME"}, nil
	case dialect.MySQL:
		// MySQL has no CREATE INDEX IF NOT EXISTS.
		return columnTypes{
			dialect:       d,
			timestamp:     "DATETIME",
			suffix:        " ENGINE=InnoDB DEFAULT CHARSET=utf8mb4",
			inlineIndexes: true,
		}, nil
	}
	return columnTypes{}, fmt.Errorf("schema: unsupported dialect %q", d)
}

type index struct {
	name    string
	table   string
	columns string
}

var indexes = []index{
	{"idx_users_team_id", "users", "team_id"},
	{"idx_teams_captain_id", "teams", "captain_id"},
	{"idx_matches_home_team_id", "matches", "home_team_id"},
	{"idx_matches_away_team_id", "matches", "away_team_id"},
	{"idx_matches_status_match_date", "matches", "status, match_date"},
}

func createTable(c columnTypes, table string, columns ...string) string {
	if c.inlineIndexes {
		for _, idx := range indexes {
			if idx.table == table {
				columns = append(columns, fmt.Sprintf("KEY %s (%s)", idx.name, idx.columns))
			}
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)%s", table, strings.Join(columns, ",\n\t"), c.suffix)
}

func ledger(c columnTypes) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)%s", LedgerTable, strings.Join([]string{
		"version INTEGER NOT NULL PRIMARY KEY",
		"name VARCHAR(255) NOT NULL",
		"applied_at " + c.timestamp + " NOT NULL",
	}, ",\n\t"), c.suffix)
}

func createUsers(c columnTypes) []string {
	return []string{createTable(c, "users",
		"id VARCHAR(36) NOT NULL PRIMARY KEY",
		"nickname VARCHAR(64) NOT NULL",
		"avatar VARCHAR(512) NOT NULL DEFAULT ''",
		"phone VARCHAR(32) NOT NULL DEFAULT ''",
		"position VARCHAR(32) NOT NULL DEFAULT ''",
		fmt.Sprintf("credit_score INTEGER NOT NULL DEFAULT %d", DefaultCreditScore),
		"team_id VARCHAR(36) NULL",
		"created_at "+c.timestamp+" NOT NULL DEFAULT CURRENT_TIMESTAMP",
	)}
}

func createTeams(c columnTypes) []string {
	return []string{createTable(c, "teams",
		"id VARCHAR(36) NOT NULL PRIMARY KEY",
		"name VARCHAR(64) NOT NULL",
		"logo VARCHAR(512) NOT NULL DEFAULT ''",
		"member_count INTEGER NOT NULL DEFAULT 0",
		"captain_id VARCHAR(36) NULL",
		"level VARCHAR(32) NOT NULL DEFAULT ''",
		"description TEXT NULL",
		"created_at "+c.timestamp+" NOT NULL DEFAULT CURRENT_TIMESTAMP",
	)}
}

func createMatches(c columnTypes) []string {
	return []string{createTable(c, "matches",
		"id VARCHAR(36) NOT NULL PRIMARY KEY",
		"home_team_id VARCHAR(36) NOT NULL",
		"away_team_id VARCHAR(36) NULL",
		"match_date "+c.timestamp+" NOT NULL",
		"location VARCHAR(255) NOT NULL DEFAULT ''",
		fmt.Sprintf("status VARCHAR(16) NOT NULL DEFAULT '%s'", MatchPending),
		"format VARCHAR(16) NOT NULL DEFAULT ''",
		"created_at "+c.timestamp+" NOT NULL DEFAULT CURRENT_TIMESTAMP",
		fmt.Sprintf("CONSTRAINT chk_matches_status CHECK (status IN ('%s', '%s', '%s', '%s'))",
			MatchPending, MatchConfirmed, MatchCompleted, MatchCancelled),
	)}
}

func createIndexes(c columnTypes) []string {
	if c.inlineIndexes {
		return nil
	}
	stmts := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)", idx.name, idx.table, idx.columns))
	}
	return stmts
}
