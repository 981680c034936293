package services

import (
	"context"

	"mynth/internal/domain/models"
)

// CreateWorkspaceRequest creates a workspace. ID is optional; when empty a
// time-ordered id is generated. Supplying one lets a client that keeps
// local state create the row idempotently.
type CreateWorkspaceRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkspaceService manages workspaces, the roots of every containment
// tree.
type WorkspaceService interface {
	CreateWorkspace(ctx context.Context, req *CreateWorkspaceRequest) (*models.Workspace, error)
	GetWorkspace(ctx context.Context, id string) (*models.Workspace, error)
	ListWorkspaces(ctx context.Context) ([]models.Workspace, error)
}
