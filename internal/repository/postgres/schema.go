package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the tables if they do not exist. Used by cmd/seed
// and by the server in dev environments.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            TEXT PRIMARY KEY,
				name          VARCHAR(255) NOT NULL,
				email         VARCHAR(255) NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL REFERENCES %s(id),
				name       VARCHAR(255) NOT NULL,
				icon       VARCHAR(255) NOT NULL,
				color      VARCHAR(32) NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (user_id, name)
			)`, tables.Categories, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id            TEXT PRIMARY KEY,
				user_id       TEXT NOT NULL REFERENCES %s(id),
				category_id   TEXT NOT NULL REFERENCES %s(id),
				category_name VARCHAR(255) NOT NULL,
				name          VARCHAR(255) NOT NULL,
				icon          VARCHAR(255) NOT NULL,
				color         VARCHAR(32) NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (user_id, name)
			)`, tables.SubCategories, tables.Users, tables.Categories),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id           TEXT PRIMARY KEY,
				user_id      TEXT NOT NULL REFERENCES %s(id),
				name         VARCHAR(255) NOT NULL,
				category     VARCHAR(255) NOT NULL,
				sub_category VARCHAR(255) NOT NULL,
				priority     VARCHAR(32) NOT NULL,
				date         TIMESTAMPTZ NOT NULL,
				status       VARCHAR(16) NOT NULL,
				subtasks     JSONB NOT NULL DEFAULT '[]',
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Tasks, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          TEXT PRIMARY KEY,
				owner_id    TEXT NOT NULL REFERENCES %s(id),
				name        VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				members     JSONB NOT NULL DEFAULT '[]',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				UNIQUE (owner_id, name)
			)`, tables.Groups, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id          TEXT PRIMARY KEY,
				owner_id    TEXT NOT NULL REFERENCES %s(id),
				title       VARCHAR(255) NOT NULL,
				content     TEXT NOT NULL,
				category    VARCHAR(255) NOT NULL,
				members     JSONB NOT NULL DEFAULT '[]',
				group_ids   TEXT[] NOT NULL DEFAULT '{}',
				attachments JSONB NOT NULL DEFAULT '[]',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			)`, tables.Annotations, tables.Users),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				annotation_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				name          VARCHAR(255) NOT NULL,
				content_type  VARCHAR(255) NOT NULL,
				size          BIGINT NOT NULL,
				data          BYTEA NOT NULL,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
				PRIMARY KEY (annotation_id, name)
			)`, tables.Attachments, tables.Annotations),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

// DropTables drops every table. Refused outside dev/test by the callers.
func DropTables(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	for _, name := range tables.All() {
		if _, err := pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", name)); err != nil {
			return fmt.Errorf("drop table %s: %w", name, err)
		}
	}
	return nil
}
