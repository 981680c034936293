package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
)

// PostgresMessageRepository implements the MessageRepository interface
type PostgresMessageRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(config *RepositoryConfig) repositories.MessageRepository {
	return &PostgresMessageRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

func scanMessageRow(row scanner) (*models.Message, error) {
	var message models.Message
	err := row.Scan(
		&message.ID,
		&message.ChatID,
		&message.ParentID,
		&message.Role,
		&message.Parts,    // pgx handles JSONB -> []map
		&message.Metadata, // pgx handles JSONB -> map
		&message.CreatedAt,
		&message.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &message, nil
}

// ListByChat retrieves every message of a chat, ordered ascending by
// creation time then id. The thread engine's leaf resolution depends on
// this ordering.
func (r *PostgresMessageRepository) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, chat_id, parent_id, role, parts, metadata, created_at, updated_at
		FROM %s
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		message, err := scanMessageRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	if messages == nil {
		messages = []models.Message{}
	}

	return messages, nil
}

// GetByID retrieves a message by ID
func (r *PostgresMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	query := fmt.Sprintf(`
		SELECT id, chat_id, parent_id, role, parts, metadata, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.Messages)

	executor := GetExecutor(ctx, r.pool)
	message, err := scanMessageRow(executor.QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get message: %w", err)
	}

	return message, nil
}

// Upsert inserts the message or replaces an existing row with the same id,
// refreshing updated_at. created_at is preserved on replace so branch
// ordering stays stable across streaming updates.
func (r *PostgresMessageRepository) Upsert(ctx context.Context, message *models.Message) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, chat_id, parent_id, role, parts, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			parent_id = EXCLUDED.parent_id,
			role = EXCLUDED.role,
			parts = EXCLUDED.parts,
			metadata = EXCLUDED.metadata,
			updated_at = now()
		RETURNING created_at, updated_at
	`, r.tables.Messages)

	parts := message.Parts
	if parts == nil {
		parts = []map[string]interface{}{}
	}
	metadata := message.Metadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		message.ID,
		message.ChatID,
		message.ParentID,
		message.Role,
		parts,    // pgx handles []map -> JSONB
		metadata, // pgx handles map -> JSONB
	).Scan(&message.CreatedAt, &message.UpdatedAt)

	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("chat %s: %w", message.ChatID, domain.ErrNotFound)
		}
		return fmt.Errorf("upsert message: %w", err)
	}

	return nil
}
