package repositories

import (
	"context"

	"mynth/internal/domain/models"
)

// MessageRepository manages message rows.
type MessageRepository interface {
	// ListByChat returns every message of the chat ordered ascending by
	// creation time, then id. The thread engine relies on this ordering as
	// the "most recent" tie-break.
	ListByChat(ctx context.Context, chatID string) ([]models.Message, error)

	GetByID(ctx context.Context, id string) (*models.Message, error)

	// Upsert inserts the message or, if a row with the same id exists,
	// replaces its content and refreshes updated_at. Streaming responses
	// call this repeatedly with the same id.
	Upsert(ctx context.Context, message *models.Message) error
}
