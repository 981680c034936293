package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"mynth/internal/config"
	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
	"mynth/internal/domain/services"
	"mynth/internal/uuidv7"
)

type workspaceService struct {
	workspaceRepo repositories.WorkspaceRepository
	idGen         *uuidv7.Generator
	logger        *slog.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo repositories.WorkspaceRepository,
	idGen *uuidv7.Generator,
	logger *slog.Logger,
) services.WorkspaceService {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		idGen:         idGen,
		logger:        logger,
	}
}

// CreateWorkspace creates a new workspace
func (s *workspaceService) CreateWorkspace(ctx context.Context, req *services.CreateWorkspaceRequest) (*models.Workspace, error) {
	if err := validation.ValidateStruct(req,
		validation.Field(&req.ID, is.UUID),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxWorkspaceNameLength),
		),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	id := req.ID
	if id == "" {
		generated, err := s.idGen.NextString()
		if err != nil {
			return nil, fmt.Errorf("generate workspace id: %w", err)
		}
		id = generated
	}

	workspace := &models.Workspace{
		ID:       id,
		Name:     req.Name,
		Settings: map[string]interface{}{},
	}

	if err := s.workspaceRepo.Create(ctx, workspace); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, &domain.ConflictError{
				Message:      fmt.Sprintf("workspace %s already exists", id),
				ResourceType: "workspace",
				ResourceID:   id,
			}
		}
		return nil, err
	}

	s.logger.Info("workspace created", "id", workspace.ID, "name", workspace.Name)

	return workspace, nil
}

// GetWorkspace retrieves a workspace by ID
func (s *workspaceService) GetWorkspace(ctx context.Context, id string) (*models.Workspace, error) {
	return s.workspaceRepo.GetByID(ctx, id)
}

// ListWorkspaces retrieves all workspaces
func (s *workspaceService) ListWorkspaces(ctx context.Context) ([]models.Workspace, error) {
	return s.workspaceRepo.List(ctx)
}
