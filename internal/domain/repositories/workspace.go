package repositories

import (
	"context"

	"mynth/internal/domain/models"
)

// WorkspaceRepository manages workspace rows.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *models.Workspace) error
	GetByID(ctx context.Context, id string) (*models.Workspace, error)
	List(ctx context.Context) ([]models.Workspace, error)
	Exists(ctx context.Context, id string) (bool, error)
	UpdateSettings(ctx context.Context, id string, settings map[string]interface{}) error
}
