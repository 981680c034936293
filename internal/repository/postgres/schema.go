package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the content-store tables and indexes if they do not
// exist. Referential actions mirror the application rules: deleting a
// workspace cascades to everything in it, deleting a folder re-roots its
// children (the recursive delete removes them explicitly first), deleting
// a chat cascades to its messages.
//
// The no-cycle and same-workspace invariants are not expressible as
// constraints here; the tree service enforces them before every write.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				settings JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Workspaces),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				workspace_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				parent_id TEXT REFERENCES %s(id) ON DELETE SET NULL,
				name TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Folders, tables.Workspaces, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_workspace_id_idx ON %s (workspace_id)`,
			tables.Folders, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_id_idx ON %s (parent_id)`,
			tables.Folders, tables.Folders),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				workspace_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				folder_id TEXT REFERENCES %s(id) ON DELETE SET NULL,
				title TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Chats, tables.Workspaces, tables.Folders),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_workspace_id_idx ON %s (workspace_id)`,
			tables.Chats, tables.Chats),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_folder_id_idx ON %s (folder_id)`,
			tables.Chats, tables.Chats),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				chat_id TEXT NOT NULL REFERENCES %s(id) ON DELETE CASCADE,
				parent_id TEXT REFERENCES %s(id) ON DELETE SET NULL,
				role TEXT NOT NULL,
				parts JSONB NOT NULL DEFAULT '[]',
				metadata JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			)
		`, tables.Messages, tables.Chats, tables.Messages),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_chat_id_idx ON %s (chat_id)`,
			tables.Messages, tables.Messages),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_parent_id_idx ON %s (parent_id)`,
			tables.Messages, tables.Messages),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_created_at_idx ON %s (created_at)`,
			tables.Messages, tables.Messages),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	return nil
}

// DropSchema removes every content-store table. Used by the seed tool for
// fresh-start runs; never called by the server.
func DropSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	statements := []string{
		fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Messages),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Chats),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Folders),
		fmt.Sprintf(`DROP TABLE IF EXISTS %s CASCADE`, tables.Workspaces),
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("drop schema: %w", err)
		}
	}

	return nil
}
