package models

import "time"

// Workspace is the top-level isolation boundary. Folders, chats, and
// messages never reference anything outside their workspace.
type Workspace struct {
	ID        string                 `json:"id" db:"id"`
	Name      string                 `json:"name" db:"name"`
	Settings  map[string]interface{} `json:"settings" db:"settings"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
}

// TreeUIState is the persisted sidebar state for one workspace.
type TreeUIState struct {
	WorkspaceID       string   `json:"workspace_id"`
	ExpandedFolderIDs []string `json:"expanded_folder_ids"`
}
