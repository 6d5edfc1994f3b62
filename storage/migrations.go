package storage

import "fmt"

// Schema migrations run at startup, one statement at a time, so a failure
// names the statement that broke. Monetary columns are integer cents and
// timestamps are unix milliseconds, which both dialects store identically.

var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT NOT NULL REFERENCES users(id),
		group_budget INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS group_members (
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		is_admin INTEGER NOT NULL DEFAULT 0,
		joined_at INTEGER NOT NULL,
		PRIMARY KEY (group_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS group_expenses (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		paid_by TEXT NOT NULL REFERENCES users(id),
		created_by TEXT NOT NULL REFERENCES users(id),
		amount INTEGER NOT NULL CHECK (amount > 0),
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS expense_shares (
		id TEXT PRIMARY KEY,
		expense_id TEXT NOT NULL REFERENCES group_expenses(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		amount INTEGER NOT NULL CHECK (amount > 0),
		UNIQUE (expense_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		from_user_id TEXT NOT NULL REFERENCES users(id),
		to_user_id TEXT NOT NULL REFERENCES users(id),
		amount INTEGER NOT NULL CHECK (amount > 0),
		idempotency_key TEXT,
		settled_at INTEGER NOT NULL,
		UNIQUE (group_id, idempotency_key)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_group_expenses_group_id ON group_expenses(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_shares_expense_id ON expense_shares(expense_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_shares_user_id ON expense_shares(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_settlements_group_id ON settlements(group_id)`,
}

var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS groups (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_by TEXT NOT NULL REFERENCES users(id),
		group_budget BIGINT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS group_members (
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		is_admin BOOLEAN NOT NULL DEFAULT FALSE,
		joined_at BIGINT NOT NULL,
		PRIMARY KEY (group_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS group_expenses (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		paid_by TEXT NOT NULL REFERENCES users(id),
		created_by TEXT NOT NULL REFERENCES users(id),
		amount BIGINT NOT NULL CHECK (amount > 0),
		category TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		created_at BIGINT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS expense_shares (
		id TEXT PRIMARY KEY,
		expense_id TEXT NOT NULL REFERENCES group_expenses(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id),
		amount BIGINT NOT NULL CHECK (amount > 0),
		UNIQUE (expense_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS settlements (
		id TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES groups(id) ON DELETE CASCADE,
		from_user_id TEXT NOT NULL REFERENCES users(id),
		to_user_id TEXT NOT NULL REFERENCES users(id),
		amount BIGINT NOT NULL CHECK (amount > 0),
		idempotency_key TEXT,
		settled_at BIGINT NOT NULL,
		UNIQUE (group_id, idempotency_key)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_group_members_user_id ON group_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_group_expenses_group_id ON group_expenses(group_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_shares_expense_id ON expense_shares(expense_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expense_shares_user_id ON expense_shares(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_settlements_group_id ON settlements(group_id)`,
}

func (s *Store) migrate() error {
	migrations := sqliteMigrations
	if s.dialect == DialectPostgres {
		migrations = postgresMigrations
	}
	for _, stmt := range migrations {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("run migration: %w: %s", err, firstLine(stmt))
		}
	}
	return nil
}

func firstLine(stmt string) string {
	for i := 0; i < len(stmt); i++ {
		if stmt[i] == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
