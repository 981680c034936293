package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"mynth/internal/config"
	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
	"mynth/internal/domain/services"
	"mynth/internal/uuidv7"
)

// expandedFoldersSettingsKey is where the tree UI state lives inside the
// workspace settings document.
const expandedFoldersSettingsKey = "expanded_folder_ids"

type treeService struct {
	workspaceRepo repositories.WorkspaceRepository
	folderRepo    repositories.FolderRepository
	chatRepo      repositories.ChatRepository
	txManager     repositories.TransactionManager
	idGen         *uuidv7.Generator
	logger        *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	workspaceRepo repositories.WorkspaceRepository,
	folderRepo repositories.FolderRepository,
	chatRepo repositories.ChatRepository,
	txManager repositories.TransactionManager,
	idGen *uuidv7.Generator,
	logger *slog.Logger,
) services.TreeService {
	return &treeService{
		workspaceRepo: workspaceRepo,
		folderRepo:    folderRepo,
		chatRepo:      chatRepo,
		txManager:     txManager,
		idGen:         idGen,
		logger:        logger,
	}
}

// GetTree loads the full workspace tree in two queries and assembles it
// in memory. Corrupt containment rows are logged and treated as roots.
func (s *treeService) GetTree(ctx context.Context, workspaceID string) (*models.TreeSnapshot, error) {
	exists, err := s.workspaceRepo.Exists(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
	}

	folders, err := s.folderRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	chats, err := s.chatRepo.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	return buildTreeSnapshot(workspaceID, folders, chats, s.logger), nil
}

// GetChildren returns one level of the tree with child counts so the UI
// can render expand affordances without loading subtrees.
func (s *treeService) GetChildren(ctx context.Context, workspaceID string, parentFolderID *string) (*models.ChildrenSlice, error) {
	exists, err := s.workspaceRepo.Exists(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrNotFound)
	}

	if parentFolderID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *parentFolderID)
		if err != nil {
			return nil, err
		}
		if parent.WorkspaceID != workspaceID {
			return nil, fmt.Errorf("folder %s: %w", *parentFolderID, domain.ErrNotFound)
		}
	}

	folders, err := s.folderRepo.ListChildren(ctx, workspaceID, parentFolderID)
	if err != nil {
		return nil, err
	}

	chats, err := s.chatRepo.ListByFolder(ctx, workspaceID, parentFolderID)
	if err != nil {
		return nil, err
	}

	folderIDs := make([]string, len(folders))
	for i, folder := range folders {
		folderIDs[i] = folder.ID
	}

	folderCounts, err := s.folderRepo.CountChildFolders(ctx, workspaceID, folderIDs)
	if err != nil {
		return nil, err
	}

	chatCounts, err := s.chatRepo.CountByFolder(ctx, workspaceID, folderIDs)
	if err != nil {
		return nil, err
	}

	summaries := make([]models.FolderSummary, len(folders))
	for i, folder := range folders {
		summaries[i] = models.FolderSummary{
			Folder:           folder,
			ChildFolderCount: folderCounts[folder.ID],
			ChildChatCount:   chatCounts[folder.ID],
		}
	}

	return &models.ChildrenSlice{
		WorkspaceID:    workspaceID,
		ParentFolderID: parentFolderID,
		Folders:        summaries,
		Chats:          chats,
	}, nil
}

// CreateFolder creates a new folder
func (s *treeService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	if err := s.validateCreateFolderRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level folders
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	exists, err := s.workspaceRepo.Exists(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("workspace %s: %w", req.WorkspaceID, domain.ErrNotFound)
	}

	if req.ParentID != nil {
		parent, err := s.folderRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent folder not found: %w", err)
		}
		if parent.WorkspaceID != req.WorkspaceID {
			return nil, fmt.Errorf("%w: parent folder belongs to another workspace", domain.ErrValidation)
		}
	}

	id, err := s.idGen.NextString()
	if err != nil {
		return nil, fmt.Errorf("generate folder id: %w", err)
	}

	folder := &models.Folder{
		ID:          id,
		WorkspaceID: req.WorkspaceID,
		ParentID:    req.ParentID,
		Name:        req.Name,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"workspace_id", req.WorkspaceID,
		"parent_id", req.ParentID,
	)

	return folder, nil
}

// UpdateFolderName renames a folder and returns the re-read row.
func (s *treeService) UpdateFolderName(ctx context.Context, id, name string) (*models.Folder, error) {
	if err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxFolderNameLength),
	); err != nil {
		return nil, fmt.Errorf("%w: name: %v", domain.ErrValidation, err)
	}

	if err := s.folderRepo.UpdateName(ctx, id, name); err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder renamed", "id", id, "name", name)

	return folder, nil
}

// MoveFolder re-parents a folder. The cycle check and the write happen in
// one transaction so a concurrent move cannot sneak a cycle in between.
func (s *treeService) MoveFolder(ctx context.Context, id string, newParentID *string) (*models.Folder, error) {
	// Normalize empty string to nil for moves to the workspace root
	if newParentID != nil && *newParentID == "" {
		newParentID = nil
	}

	if newParentID != nil && *newParentID == id {
		return nil, fmt.Errorf("%w: cannot move folder into itself", domain.ErrValidation)
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if newParentID != nil {
			parent, err := s.folderRepo.GetByID(txCtx, *newParentID)
			if err != nil {
				return fmt.Errorf("parent folder not found: %w", err)
			}
			if parent.WorkspaceID != folder.WorkspaceID {
				return fmt.Errorf("%w: parent folder belongs to another workspace", domain.ErrValidation)
			}

			folders, err := s.folderRepo.ListByWorkspace(txCtx, folder.WorkspaceID)
			if err != nil {
				return err
			}
			if wouldCreateCycle(id, *newParentID, folderParents(folders)) {
				return fmt.Errorf("%w: cannot move folder under its own descendant", domain.ErrValidation)
			}
		}

		return s.folderRepo.SetParent(txCtx, id, newParentID)
	})
	if err != nil {
		return nil, err
	}

	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder moved", "id", id, "parent_id", newParentID)

	return folder, nil
}

// DeleteFolderRecursive removes the folder, its entire folder subtree, and
// every chat inside it in one transaction. Messages cascade at the store
// level when their chat goes.
func (s *treeService) DeleteFolderRecursive(ctx context.Context, id string) error {
	var deletedFolders int

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		folder, err := s.folderRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		folders, err := s.folderRepo.ListByWorkspace(txCtx, folder.WorkspaceID)
		if err != nil {
			return err
		}

		subtreeIDs := collectSubtreeIDs(folders, id)
		deletedFolders = len(subtreeIDs)

		if err := s.chatRepo.DeleteByFolderIDs(txCtx, subtreeIDs); err != nil {
			return err
		}

		return s.folderRepo.DeleteByIDs(txCtx, subtreeIDs)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder subtree deleted", "id", id, "folder_count", deletedFolders)

	return nil
}

// CreateChat creates a new chat
func (s *treeService) CreateChat(ctx context.Context, req *services.CreateChatRequest) (*models.Chat, error) {
	if err := s.validateCreateChatRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root-level chats
	if req.FolderID != nil && *req.FolderID == "" {
		req.FolderID = nil
	}

	exists, err := s.workspaceRepo.Exists(ctx, req.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("workspace %s: %w", req.WorkspaceID, domain.ErrNotFound)
	}

	if req.FolderID != nil {
		folder, err := s.folderRepo.GetByID(ctx, *req.FolderID)
		if err != nil {
			return nil, fmt.Errorf("folder not found: %w", err)
		}
		if folder.WorkspaceID != req.WorkspaceID {
			return nil, fmt.Errorf("%w: folder belongs to another workspace", domain.ErrValidation)
		}
	}

	id, err := s.idGen.NextString()
	if err != nil {
		return nil, fmt.Errorf("generate chat id: %w", err)
	}

	chat := &models.Chat{
		ID:          id,
		WorkspaceID: req.WorkspaceID,
		FolderID:    req.FolderID,
		Title:       req.Title,
	}

	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}

	s.logger.Info("chat created",
		"id", chat.ID,
		"title", chat.Title,
		"workspace_id", req.WorkspaceID,
		"folder_id", req.FolderID,
	)

	return chat, nil
}

// GetChat retrieves a chat by ID
func (s *treeService) GetChat(ctx context.Context, id string) (*models.Chat, error) {
	return s.chatRepo.GetByID(ctx, id)
}

// UpdateChatTitle renames a chat and returns the re-read row.
func (s *treeService) UpdateChatTitle(ctx context.Context, id, title string) (*models.Chat, error) {
	if err := validation.Validate(title,
		validation.Required,
		validation.Length(1, config.MaxChatTitleLength),
	); err != nil {
		return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
	}

	if err := s.chatRepo.UpdateTitle(ctx, id, title); err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat renamed", "id", id, "title", title)

	return chat, nil
}

// MoveChat moves a chat into folderID (nil = workspace root). Chats are
// leaves, so no cycle check is needed, only workspace containment.
func (s *treeService) MoveChat(ctx context.Context, id string, folderID *string) (*models.Chat, error) {
	// Normalize empty string to nil for moves to the workspace root
	if folderID != nil && *folderID == "" {
		folderID = nil
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		chat, err := s.chatRepo.GetByID(txCtx, id)
		if err != nil {
			return err
		}

		if folderID != nil {
			folder, err := s.folderRepo.GetByID(txCtx, *folderID)
			if err != nil {
				return fmt.Errorf("folder not found: %w", err)
			}
			if folder.WorkspaceID != chat.WorkspaceID {
				return fmt.Errorf("%w: folder belongs to another workspace", domain.ErrValidation)
			}
		}

		return s.chatRepo.SetFolder(txCtx, id, folderID)
	})
	if err != nil {
		return nil, err
	}

	chat, err := s.chatRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("chat moved", "id", id, "folder_id", folderID)

	return chat, nil
}

// DeleteChat deletes a chat; its messages cascade at the store level.
func (s *treeService) DeleteChat(ctx context.Context, id string) error {
	if err := s.chatRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("chat deleted", "id", id)

	return nil
}

// GetTreeUIState reads the persisted expanded-folder set from the
// workspace settings. Ids of folders that no longer exist are filtered
// out so the UI never tries to expand a ghost.
func (s *treeService) GetTreeUIState(ctx context.Context, workspaceID string) (*models.TreeUIState, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	stored := decodeExpandedFolderIDs(workspace.Settings[expandedFoldersSettingsKey])

	expanded := []string{}
	if len(stored) > 0 {
		folders, err := s.folderRepo.ListByWorkspace(ctx, workspaceID)
		if err != nil {
			return nil, err
		}
		live := make(map[string]struct{}, len(folders))
		for _, folder := range folders {
			live[folder.ID] = struct{}{}
		}
		for _, id := range stored {
			if _, ok := live[id]; ok {
				expanded = append(expanded, id)
			}
		}
	}

	return &models.TreeUIState{
		WorkspaceID:       workspaceID,
		ExpandedFolderIDs: expanded,
	}, nil
}

// SetTreeUIState persists the expanded-folder set, deduplicated and
// capped. When over the cap the oldest entries are dropped first.
func (s *treeService) SetTreeUIState(ctx context.Context, workspaceID string, expandedFolderIDs []string) (*models.TreeUIState, error) {
	workspace, err := s.workspaceRepo.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	deduped := make([]string, 0, len(expandedFolderIDs))
	seen := make(map[string]struct{}, len(expandedFolderIDs))
	for _, id := range expandedFolderIDs {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		deduped = append(deduped, id)
	}

	if len(deduped) > config.MaxPersistedExpandedFolderIDs {
		dropped := len(deduped) - config.MaxPersistedExpandedFolderIDs
		deduped = deduped[dropped:]
		s.logger.Warn("expanded folder set over cap; dropping oldest entries",
			"workspace_id", workspaceID,
			"dropped", dropped,
		)
	}

	settings := workspace.Settings
	if settings == nil {
		settings = map[string]interface{}{}
	}
	settings[expandedFoldersSettingsKey] = deduped

	if err := s.workspaceRepo.UpdateSettings(ctx, workspaceID, settings); err != nil {
		return nil, err
	}

	return &models.TreeUIState{
		WorkspaceID:       workspaceID,
		ExpandedFolderIDs: deduped,
	}, nil
}

// decodeExpandedFolderIDs tolerates both []string (in-process writes) and
// []interface{} (JSONB round trip).
func decodeExpandedFolderIDs(raw interface{}) []string {
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		ids := make([]string, 0, len(v))
		for _, item := range v {
			if id, ok := item.(string); ok {
				ids = append(ids, id)
			}
		}
		return ids
	default:
		return nil
	}
}

// validateCreateFolderRequest validates a folder creation request
func (s *treeService) validateCreateFolderRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
		),
	)
}

// validateCreateChatRequest validates a chat creation request
func (s *treeService) validateCreateChatRequest(req *services.CreateChatRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.WorkspaceID, validation.Required),
		validation.Field(&req.Title,
			validation.Required,
			validation.Length(1, config.MaxChatTitleLength),
		),
	)
}
