package models

import "time"

type Folder struct {
	ID          string    `json:"id" db:"id"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	ParentID    *string   `json:"parent_id" db:"parent_id"` // NULL = workspace root
	Name        string    `json:"name" db:"name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// FolderSummary is a folder plus precomputed child counts, so an
// incremental tree UI can render an expand affordance without another
// round trip.
type FolderSummary struct {
	Folder
	ChildFolderCount int `json:"child_folder_count"`
	ChildChatCount   int `json:"child_chat_count"`
}

// FolderTreeNode is a folder with its children nested, as returned by the
// full-tree snapshot.
type FolderTreeNode struct {
	Folder
	Folders []*FolderTreeNode `json:"folders"`
	Chats   []Chat            `json:"chats"`
}

// TreeSnapshot is the entire containment tree of one workspace.
type TreeSnapshot struct {
	WorkspaceID string            `json:"workspace_id"`
	RootFolders []*FolderTreeNode `json:"root_folders"`
	RootChats   []Chat            `json:"root_chats"`
}

// ChildrenSlice is a single level of the tree: the folders and chats
// directly under one parent folder (or under the workspace root).
type ChildrenSlice struct {
	WorkspaceID    string          `json:"workspace_id"`
	ParentFolderID *string         `json:"parent_folder_id"`
	Folders        []FolderSummary `json:"folders"`
	Chats          []Chat          `json:"chats"`
}
