package repositories

import (
	"context"

	"mynth/internal/domain/models"
)

// FolderRepository manages folder rows. Containment invariants (no cycle,
// no self-parent, same-workspace parent) are enforced by the tree service,
// not here; the repository is plain row access.
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error
	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// ListByWorkspace returns every folder of the workspace, ordered by id
	// ascending, for in-memory tree assembly.
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error)

	// ListChildren returns the folders directly under parentID; a nil
	// parentID selects workspace-root folders.
	ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]models.Folder, error)

	// CountChildFolders returns, for each of the given folder ids, how many
	// folders name it as parent. Folders with zero children are absent from
	// the result.
	CountChildFolders(ctx context.Context, workspaceID string, parentIDs []string) (map[string]int, error)

	UpdateName(ctx context.Context, id, name string) error
	SetParent(ctx context.Context, id string, parentID *string) error
	DeleteByIDs(ctx context.Context, ids []string) error
}
