package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
)

// PostgresWorkspaceRepository implements the WorkspaceRepository interface
type PostgresWorkspaceRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewWorkspaceRepository creates a new workspace repository
func NewWorkspaceRepository(config *RepositoryConfig) repositories.WorkspaceRepository {
	return &PostgresWorkspaceRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new workspace
func (r *PostgresWorkspaceRepository) Create(ctx context.Context, workspace *models.Workspace) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, settings)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, r.tables.Workspaces)

	settings := workspace.Settings
	if settings == nil {
		settings = map[string]interface{}{}
	}

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		workspace.ID,
		workspace.Name,
		settings, // pgx handles map -> JSONB
	).Scan(&workspace.CreatedAt, &workspace.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fmt.Errorf("workspace %s: %w", workspace.ID, domain.ErrConflict)
		}
		return fmt.Errorf("create workspace: %w", err)
	}

	return nil
}

// GetByID retrieves a workspace by ID
func (r *PostgresWorkspaceRepository) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, name, settings, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Workspaces)

	var workspace models.Workspace
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id).Scan(
		&workspace.ID,
		&workspace.Name,
		&workspace.Settings,
		&workspace.CreatedAt,
		&workspace.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get workspace: %w", err)
	}

	return &workspace, nil
}

// List retrieves all workspaces ordered by creation
func (r *PostgresWorkspaceRepository) List(ctx context.Context) ([]models.Workspace, error) {
	query := fmt.Sprintf(`
		SELECT id, name, settings, created_at, updated_at
		FROM %s
		ORDER BY created_at ASC
	`, r.tables.Workspaces)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []models.Workspace
	for rows.Next() {
		var workspace models.Workspace
		err := rows.Scan(
			&workspace.ID,
			&workspace.Name,
			&workspace.Settings,
			&workspace.CreatedAt,
			&workspace.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, workspace)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}

	if workspaces == nil {
		workspaces = []models.Workspace{}
	}

	return workspaces, nil
}

// Exists checks if a workspace exists
func (r *PostgresWorkspaceRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = $1)`, r.tables.Workspaces)

	var exists bool
	executor := GetExecutor(ctx, r.pool)
	if err := executor.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check workspace exists: %w", err)
	}

	return exists, nil
}

// UpdateSettings replaces the workspace settings document
func (r *PostgresWorkspaceRepository) UpdateSettings(ctx context.Context, id string, settings map[string]interface{}) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET settings = $1, updated_at = now()
		WHERE id = $2
	`, r.tables.Workspaces)

	if settings == nil {
		settings = map[string]interface{}{}
	}

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, settings, id)
	if err != nil {
		return fmt.Errorf("update workspace settings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
