package services

import (
	"context"

	"mynth/internal/domain/models"
)

// UpsertMessageRequest inserts or replaces one message by id. The id is
// allocated by the caller so that every delta of a streaming response can
// land on the same row.
type UpsertMessageRequest struct {
	ID       string                   `json:"id"`
	ChatID   string                   `json:"chat_id"`
	ParentID *string                  `json:"parent_id"`
	Role     models.MessageRole       `json:"role"`
	Parts    []map[string]interface{} `json:"parts"`
	Metadata map[string]interface{}   `json:"metadata"`
}

// ThreadService resolves linear conversation views out of a chat's message
// DAG and persists messages.
type ThreadService interface {
	// ListMessages returns one root-to-leaf path through the chat's
	// message DAG. With a nil branchID the leaf is the most recently
	// created childless message of the whole chat; with a branchID it is
	// the most recent childless descendant of that message (inclusive).
	// An empty chat yields an empty slice, not an error.
	ListMessages(ctx context.Context, chatID string, branchID *string) ([]models.Message, error)

	UpsertMessage(ctx context.Context, req *UpsertMessageRequest) (*models.Message, error)
}
