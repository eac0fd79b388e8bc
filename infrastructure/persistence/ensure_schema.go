package persistence

import "database/sql"

// EnsureAccountSchema creates the credential/account tables when missing.
func EnsureAccountSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS workspace_credentials (
			id BIGSERIAL PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			client_id TEXT NOT NULL,
			client_secret TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (workspace_id, platform)
		)`,
		`CREATE TABLE IF NOT EXISTS social_accounts (
			id BIGSERIAL PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			platform TEXT NOT NULL,
			external_account_id TEXT NOT NULL,
			display_name TEXT NOT NULL DEFAULT '',
			access_token TEXT NOT NULL,
			refresh_token TEXT NOT NULL DEFAULT '',
			token_expires_at TIMESTAMPTZ,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (workspace_id, platform, external_account_id)
		)`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// EnsureSyncSchema creates the analytics/comment/catalog mirror tables.
func EnsureSyncSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS platform_analytics_records (
			id BIGSERIAL PRIMARY KEY,
			account_id BIGINT NOT NULL,
			date TEXT NOT NULL,
			followers BIGINT NOT NULL DEFAULT 0,
			impressions BIGINT NOT NULL DEFAULT 0,
			engagements BIGINT NOT NULL DEFAULT 0,
			clicks BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (account_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS comment_records (
			id BIGSERIAL PRIMARY KEY,
			post_platform_id TEXT NOT NULL,
			external_comment_id TEXT NOT NULL,
			parent_external_id TEXT,
			author TEXT NOT NULL DEFAULT '',
			body TEXT NOT NULL DEFAULT '',
			published_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (post_platform_id, external_comment_id)
		)`,
		`CREATE TABLE IF NOT EXISTS comment_sync_cursors (
			post_platform_id TEXT PRIMARY KEY,
			last_external_id TEXT NOT NULL DEFAULT '',
			last_timestamp TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_items (
			id BIGSERIAL PRIMARY KEY,
			workspace_id TEXT NOT NULL,
			sku TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			price_cents BIGINT NOT NULL DEFAULT 0,
			currency TEXT NOT NULL DEFAULT 'USD',
			quantity INT NOT NULL DEFAULT 0,
			external_item_id TEXT,
			updated_at TIMESTAMPTZ NOT NULL,
			UNIQUE (workspace_id, sku)
		)`,
	}
	for _, q := range stmts {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// EnsureUserSchema creates the dashboard user table.
func EnsureUserSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS public.user (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		user_name TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}
