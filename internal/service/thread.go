package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
	"mynth/internal/domain/services"
)

type threadService struct {
	chatRepo    repositories.ChatRepository
	messageRepo repositories.MessageRepository
	logger      *slog.Logger
}

// NewThreadService creates a new thread service
func NewThreadService(
	chatRepo repositories.ChatRepository,
	messageRepo repositories.MessageRepository,
	logger *slog.Logger,
) services.ThreadService {
	return &threadService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// ListMessages resolves one linear root-to-leaf path through the chat's
// message DAG. The leaf is the newest childless message of the whole chat,
// or of branchID's subtree when a branch is requested.
func (s *threadService) ListMessages(ctx context.Context, chatID string, branchID *string) ([]models.Message, error) {
	exists, err := s.chatRepo.Exists(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}

	messages, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return []models.Message{}, nil
	}

	idx := indexMessages(messages)

	var leafID string
	if branchID != nil {
		if _, ok := idx.byID[*branchID]; !ok {
			return nil, fmt.Errorf("branch message %s: %w", *branchID, domain.ErrNotFound)
		}
		leafID = idx.latestLeafUnder(*branchID)
	} else {
		leafID = idx.latestLeaf()
	}

	if leafID == "" {
		// Every message has children: the stored data is cyclic. Nothing
		// resolvable, return the empty thread.
		s.logger.Warn("chat has no resolvable leaf message", "chat_id", chatID)
		return []models.Message{}, nil
	}

	return idx.pathToRoot(leafID, s.logger), nil
}

// UpsertMessage inserts or replaces one message and returns the stored row.
func (s *threadService) UpsertMessage(ctx context.Context, req *services.UpsertMessageRequest) (*models.Message, error) {
	if err := s.validateUpsertRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Normalize empty string to nil for root messages
	if req.ParentID != nil && *req.ParentID == "" {
		req.ParentID = nil
	}

	exists, err := s.chatRepo.Exists(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("chat %s: %w", req.ChatID, domain.ErrNotFound)
	}

	if req.ParentID != nil && *req.ParentID == req.ID {
		return nil, fmt.Errorf("%w: message cannot be its own parent", domain.ErrValidation)
	}

	if req.ParentID != nil {
		parent, err := s.messageRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent message not found: %w", err)
		}
		if parent.ChatID != req.ChatID {
			return nil, fmt.Errorf("%w: parent message belongs to another chat", domain.ErrValidation)
		}
	}

	message := &models.Message{
		ID:       req.ID,
		ChatID:   req.ChatID,
		ParentID: req.ParentID,
		Role:     req.Role,
		Parts:    req.Parts,
		Metadata: req.Metadata,
	}

	if err := s.messageRepo.Upsert(ctx, message); err != nil {
		return nil, err
	}

	s.logger.Debug("message upserted",
		"id", message.ID,
		"chat_id", message.ChatID,
		"parent_id", message.ParentID,
		"role", message.Role,
	)

	return message, nil
}

// validateUpsertRequest validates a message upsert request
func (s *threadService) validateUpsertRequest(req *services.UpsertMessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ID, validation.Required),
		validation.Field(&req.ChatID, validation.Required),
		validation.Field(&req.Role,
			validation.Required,
			validation.In(models.RoleSystem, models.RoleUser, models.RoleAssistant),
		),
	)
}
