package services

import (
	"context"

	"mynth/internal/domain/models"
)

// CreateFolderRequest creates a folder under parentID, or at the workspace
// root when parentID is nil.
type CreateFolderRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	Name        string  `json:"name"`
	ParentID    *string `json:"parent_id"`
}

// CreateChatRequest creates a chat inside folderID, or at the workspace
// root when folderID is nil.
type CreateChatRequest struct {
	WorkspaceID string  `json:"workspace_id"`
	Title       string  `json:"title"`
	FolderID    *string `json:"folder_id"`
}

// TreeService owns the folder/chat containment tree of each workspace.
//
// Every mutation returns the freshly re-read row, never a locally mutated
// copy, so callers always see store-confirmed state including generated
// timestamps.
type TreeService interface {
	// GetTree builds the entire workspace tree in one pass. Corrupt rows
	// (missing parent, self-parent, cycle) are logged and treated as
	// roots rather than failing the read.
	GetTree(ctx context.Context, workspaceID string) (*models.TreeSnapshot, error)

	// GetChildren returns one level of the tree for incremental UIs.
	GetChildren(ctx context.Context, workspaceID string, parentFolderID *string) (*models.ChildrenSlice, error)

	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)
	UpdateFolderName(ctx context.Context, id, name string) (*models.Folder, error)

	// MoveFolder re-parents a folder; nil promotes it to the workspace
	// root. Rejects self-parenting and any move that would create a cycle.
	MoveFolder(ctx context.Context, id string, newParentID *string) (*models.Folder, error)

	// DeleteFolderRecursive removes the folder, every folder below it, and
	// every chat inside the subtree, atomically.
	DeleteFolderRecursive(ctx context.Context, id string) error

	CreateChat(ctx context.Context, req *CreateChatRequest) (*models.Chat, error)
	GetChat(ctx context.Context, id string) (*models.Chat, error)
	UpdateChatTitle(ctx context.Context, id, title string) (*models.Chat, error)
	MoveChat(ctx context.Context, id string, folderID *string) (*models.Chat, error)
	DeleteChat(ctx context.Context, id string) error

	// GetTreeUIState and SetTreeUIState persist the sidebar's expanded
	// folder set in the workspace settings.
	GetTreeUIState(ctx context.Context, workspaceID string) (*models.TreeUIState, error)
	SetTreeUIState(ctx context.Context, workspaceID string, expandedFolderIDs []string) (*models.TreeUIState, error)
}
