package service

import (
	"log/slog"

	"mynth/internal/domain/models"
)

// folderParents returns a parent-pointer lookup for cycle walks.
func folderParents(folders []models.Folder) map[string]*string {
	parents := make(map[string]*string, len(folders))
	for _, folder := range folders {
		parents[folder.ID] = folder.ParentID
	}
	return parents
}

// wouldCreateCycle reports whether parenting folderID under parentID would
// close a cycle. It walks the ancestor chain from parentID toward the
// root; reaching folderID means a cycle. The visited set terminates the
// walk if the chain already contains a cycle in stored data, so corrupt
// rows degrade the check instead of hanging it.
func wouldCreateCycle(folderID, parentID string, parents map[string]*string) bool {
	current := &parentID
	visited := make(map[string]struct{})

	for current != nil {
		if *current == folderID {
			return true
		}
		if _, seen := visited[*current]; seen {
			return true
		}
		visited[*current] = struct{}{}

		next, ok := parents[*current]
		if !ok {
			return false
		}
		current = next
	}

	return false
}

// collectSubtreeIDs returns the ids of every folder in the subtree rooted
// at rootID, rootID included, in depth-first order. The traversal is
// iterative (explicit stack) so arbitrarily deep trees cannot exhaust the
// call stack, and the seen set makes it terminate on corrupt cyclic data.
func collectSubtreeIDs(folders []models.Folder, rootID string) []string {
	childIDsByParent := make(map[string][]string)
	for _, folder := range folders {
		if folder.ParentID == nil {
			continue
		}
		childIDsByParent[*folder.ParentID] = append(childIDsByParent[*folder.ParentID], folder.ID)
	}

	var subtreeIDs []string
	stack := []string{rootID}
	seen := make(map[string]struct{})

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, done := seen[current]; done {
			continue
		}
		seen[current] = struct{}{}
		subtreeIDs = append(subtreeIDs, current)

		children := childIDsByParent[current]
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return subtreeIDs
}

// buildTreeSnapshot assembles the nested workspace tree from flat rows.
//
// It fails open on corrupt rows: a folder whose parent is missing, is
// itself, or closes a cycle is logged and attached at the root, so one bad
// row never hides the rest of the tree. Same for a chat pointing at a
// missing folder.
func buildTreeSnapshot(workspaceID string, folders []models.Folder, chats []models.Chat, logger *slog.Logger) *models.TreeSnapshot {
	parents := folderParents(folders)

	nodesByID := make(map[string]*models.FolderTreeNode, len(folders))
	for _, folder := range folders {
		nodesByID[folder.ID] = &models.FolderTreeNode{
			Folder:  folder,
			Folders: []*models.FolderTreeNode{},
			Chats:   []models.Chat{},
		}
	}

	rootFolders := []*models.FolderTreeNode{}

	attachAsRoot := func(node *models.FolderTreeNode, reason string) {
		logger.Warn("folder has invalid parent; treating as root",
			"workspace_id", workspaceID,
			"folder_id", node.ID,
			"parent_id", *node.ParentID,
			"reason", reason,
		)
		rootFolders = append(rootFolders, node)
	}

	for _, folder := range folders {
		node := nodesByID[folder.ID]

		if folder.ParentID == nil {
			rootFolders = append(rootFolders, node)
			continue
		}

		if *folder.ParentID == folder.ID {
			attachAsRoot(node, "self-parent")
			continue
		}

		parentNode, ok := nodesByID[*folder.ParentID]
		if !ok {
			attachAsRoot(node, "missing parent")
			continue
		}

		if wouldCreateCycle(folder.ID, *folder.ParentID, parents) {
			attachAsRoot(node, "cycle")
			continue
		}

		parentNode.Folders = append(parentNode.Folders, node)
	}

	rootChats := []models.Chat{}

	for _, chat := range chats {
		if chat.FolderID == nil {
			rootChats = append(rootChats, chat)
			continue
		}

		folderNode, ok := nodesByID[*chat.FolderID]
		if !ok {
			logger.Warn("chat has invalid folder; treating as root",
				"workspace_id", workspaceID,
				"chat_id", chat.ID,
				"folder_id", *chat.FolderID,
				"reason", "missing folder",
			)
			rootChats = append(rootChats, chat)
			continue
		}

		folderNode.Chats = append(folderNode.Chats, chat)
	}

	return &models.TreeSnapshot{
		WorkspaceID: workspaceID,
		RootFolders: rootFolders,
		RootChats:   rootChats,
	}
}
