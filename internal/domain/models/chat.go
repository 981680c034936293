package models

import "time"

// Chat is a named conversation container. It is always a leaf of the
// folder tree; its own contents are the message DAG.
type Chat struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	FolderID    *string   `json:"folder_id" db:"folder_id"` // NULL = workspace root
	Title       string    `json:"title" db:"title"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
