package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
)

// PostgresChatRepository implements the ChatRepository interface
type PostgresChatRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewChatRepository creates a new chat repository
func NewChatRepository(config *RepositoryConfig) repositories.ChatRepository {
	return &PostgresChatRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanChatRow(row scanner) (*models.Chat, error) {
	var chat models.Chat
	err := row.Scan(
		&chat.ID,
		&chat.WorkspaceID,
		&chat.FolderID,
		&chat.Title,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// Create creates a new chat
func (r *PostgresChatRepository) Create(ctx context.Context, chat *models.Chat) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, folder_id, title)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		chat.ID,
		chat.WorkspaceID,
		chat.FolderID,
		chat.Title,
	).Scan(&chat.CreatedAt, &chat.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("workspace %s: %w", chat.WorkspaceID, domain.ErrNotFound)
		}
		return fmt.Errorf("create chat: %w", err)
	}

	return nil
}

// GetByID retrieves a chat by ID
func (r *PostgresChatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, folder_id, title, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	chat, err := scanChatRow(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}

	return chat, nil
}

// Exists checks if a chat exists
func (r *PostgresChatRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, r.tables.Chats)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check chat exists: %w", err)
	}

	return exists, nil
}

// ListByWorkspace retrieves all chats in a workspace (flat list)
func (r *PostgresChatRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Chat, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, folder_id, title, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY id ASC
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		chat, err := scanChatRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, *chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}

	if chats == nil {
		chats = []models.Chat{}
	}

	return chats, nil
}

// ListByFolder lists the chats directly inside folderID (nil = roots)
func (r *PostgresChatRepository) ListByFolder(ctx context.Context, workspaceID string, folderID *string) ([]models.Chat, error) {
	var query string
	var args []interface{}

	if folderID == nil {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, folder_id, title, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND folder_id IS NULL
			ORDER BY title ASC, id ASC
		`, r.tables.Chats)
		args = append(args, workspaceID)
	} else {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, folder_id, title, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND folder_id = $2
			ORDER BY title ASC, id ASC
		`, r.tables.Chats)
		args = append(args, workspaceID, *folderID)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder chats: %w", err)
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		chat, err := scanChatRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, *chat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}

	if chats == nil {
		chats = []models.Chat{}
	}

	return chats, nil
}

// CountByFolder counts chats per folder id in one query
func (r *PostgresChatRepository) CountByFolder(ctx context.Context, workspaceID string, folderIDs []string) (map[string]int, error) {
	if len(folderIDs) == 0 {
		return map[string]int{}, nil
	}

	query := fmt.Sprintf(`
		SELECT folder_id, COUNT(*)
		FROM %s
		WHERE workspace_id = $1 AND folder_id = ANY($2)
		GROUP BY folder_id
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("count folder chats: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(folderIDs))
	for rows.Next() {
		var folderID string
		var count int
		if err := rows.Scan(&folderID, &count); err != nil {
			return nil, fmt.Errorf("scan chat count: %w", err)
		}
		counts[folderID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat counts: %w", err)
	}

	return counts, nil
}

// UpdateTitle renames a chat
func (r *PostgresChatRepository) UpdateTitle(ctx context.Context, id, title string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET title = $1, updated_at = now()
		WHERE id = $2
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, title, id)
	if err != nil {
		return fmt.Errorf("update chat title: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetFolder moves a chat into folderID (nil = workspace root)
func (r *PostgresChatRepository) SetFolder(ctx context.Context, id string, folderID *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET folder_id = $1, updated_at = now()
		WHERE id = $2
	`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, folderID, id)
	if err != nil {
		return fmt.Errorf("set chat folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a chat; its messages cascade at the store level
func (r *PostgresChatRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByFolderIDs removes every chat inside the given folders. Zero
// matching rows is a no-op.
func (r *PostgresChatRepository) DeleteByFolderIDs(ctx context.Context, folderIDs []string) error {
	if len(folderIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE folder_id = ANY($1)`, r.tables.Chats)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, folderIDs); err != nil {
		return fmt.Errorf("delete folder chats: %w", err)
	}

	return nil
}
