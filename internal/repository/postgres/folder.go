package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// scanner defines the interface for row scanning (implemented by both
// pgx.Row and pgx.Rows)
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFolderRow(row scanner) (*models.Folder, error) {
	var folder models.Folder
	err := row.Scan(
		&folder.ID,
		&folder.WorkspaceID,
		&folder.ParentID,
		&folder.Name,
		&folder.CreatedAt,
		&folder.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &folder, nil
}

// Create creates a new folder
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, workspace_id, parent_id, name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		folder.ID,
		folder.WorkspaceID,
		folder.ParentID,
		folder.Name,
	).Scan(&folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
		}
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("workspace %s: %w", folder.WorkspaceID, domain.ErrNotFound)
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, parent_id, name, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	folder, err := scanFolderRow(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// ListByWorkspace retrieves all folders in a workspace (flat list).
// Ordered by id ascending; ids are time-sortable, so this is creation
// order.
func (r *PostgresFolderRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT id, workspace_id, parent_id, name, created_at, updated_at
		FROM %s
		WHERE workspace_id = $1
		ORDER BY id ASC
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}

// ListChildren lists immediate child folders of parentID (nil = roots)
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, parent_id, name, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND parent_id IS NULL
			ORDER BY name ASC, id ASC
		`, r.tables.Folders)
		args = append(args, workspaceID)
	} else {
		query = fmt.Sprintf(`
			SELECT id, workspace_id, parent_id, name, created_at, updated_at
			FROM %s
			WHERE workspace_id = $1 AND parent_id = $2
			ORDER BY name ASC, id ASC
		`, r.tables.Folders)
		args = append(args, workspaceID, *parentID)
	}

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folder children: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolderRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	if folders == nil {
		folders = []models.Folder{}
	}

	return folders, nil
}

// CountChildFolders counts direct child folders for each parent id in one
// query, avoiding N+1 when rendering a tree level.
func (r *PostgresFolderRepository) CountChildFolders(ctx context.Context, workspaceID string, parentIDs []string) (map[string]int, error) {
	if len(parentIDs) == 0 {
		return map[string]int{}, nil
	}

	query := fmt.Sprintf(`
		SELECT parent_id, COUNT(*)
		FROM %s
		WHERE workspace_id = $1 AND parent_id = ANY($2)
		GROUP BY parent_id
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, workspaceID, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("count child folders: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int, len(parentIDs))
	for rows.Next() {
		var parentID string
		var count int
		if err := rows.Scan(&parentID, &count); err != nil {
			return nil, fmt.Errorf("scan folder count: %w", err)
		}
		counts[parentID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folder counts: %w", err)
	}

	return counts, nil
}

// UpdateName renames a folder
func (r *PostgresFolderRepository) UpdateName(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = now()
		WHERE id = $2
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("update folder name: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetParent re-parents a folder (nil = workspace root)
func (r *PostgresFolderRepository) SetParent(ctx context.Context, id string, parentID *string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET parent_id = $1, updated_at = now()
		WHERE id = $2
	`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, parentID, id)
	if err != nil {
		return fmt.Errorf("set folder parent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// DeleteByIDs removes the given folders. Zero matching rows is a no-op.
func (r *PostgresFolderRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Folders)

	executor := GetExecutor(ctx, r.pool)
	if _, err := executor.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("delete folders: %w", err)
	}

	return nil
}
