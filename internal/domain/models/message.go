package models

import "time"

// MessageRole identifies who produced a message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is one node of a chat's message DAG. ParentID points at the
// message it replies to; siblings are alternative branches. Messages are
// appended, never re-parented.
type Message struct {
	ID        string                   `json:"id" db:"id"`
	ChatID    string                   `json:"chat_id" db:"chat_id"`
	ParentID  *string                  `json:"parent_id" db:"parent_id"` // NULL = conversation root
	Role      MessageRole              `json:"role" db:"role"`
	Parts     []map[string]interface{} `json:"parts" db:"parts"`       // ordered content blocks, JSONB
	Metadata  map[string]interface{}   `json:"metadata" db:"metadata"` // JSONB
	CreatedAt time.Time                `json:"created_at" db:"created_at"`
	UpdatedAt time.Time                `json:"updated_at" db:"updated_at"`
}
