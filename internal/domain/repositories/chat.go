package repositories

import (
	"context"

	"mynth/internal/domain/models"
)

// ChatRepository manages chat rows.
type ChatRepository interface {
	Create(ctx context.Context, chat *models.Chat) error
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	Exists(ctx context.Context, id string) (bool, error)

	// ListByWorkspace returns every chat of the workspace, ordered by id
	// ascending.
	ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Chat, error)

	// ListByFolder returns the chats directly inside folderID; a nil
	// folderID selects workspace-root chats.
	ListByFolder(ctx context.Context, workspaceID string, folderID *string) ([]models.Chat, error)

	// CountByFolder returns, for each of the given folder ids, how many
	// chats it contains. Folders with zero chats are absent from the result.
	CountByFolder(ctx context.Context, workspaceID string, folderIDs []string) (map[string]int, error)

	UpdateTitle(ctx context.Context, id, title string) error
	SetFolder(ctx context.Context, id string, folderID *string) error
	Delete(ctx context.Context, id string) error

	// DeleteByFolderIDs removes every chat whose folder is in ids. Zero
	// matching rows is a no-op.
	DeleteByFolderIDs(ctx context.Context, folderIDs []string) error
}
