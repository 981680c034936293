package service

import (
	"log/slog"

	"mynth/internal/domain/models"
)

// messageIndex holds one chat's messages keyed for branch resolution.
// Messages must arrive ordered ascending by creation time then id; every
// "most recent" pick below leans on that ordering.
type messageIndex struct {
	byID     map[string]*models.Message
	children map[string][]string
	ordered  []models.Message
}

func indexMessages(messages []models.Message) *messageIndex {
	idx := &messageIndex{
		byID:     make(map[string]*models.Message, len(messages)),
		children: make(map[string][]string),
		ordered:  messages,
	}
	for i := range messages {
		message := &messages[i]
		idx.byID[message.ID] = message
		if message.ParentID != nil {
			idx.children[*message.ParentID] = append(idx.children[*message.ParentID], message.ID)
		}
	}
	return idx
}

func (idx *messageIndex) isLeaf(id string) bool {
	return len(idx.children[id]) == 0
}

// latestLeaf returns the most recently created childless message, or ""
// when the chat is empty. Scans backward so the first hit wins.
func (idx *messageIndex) latestLeaf() string {
	for i := len(idx.ordered) - 1; i >= 0; i-- {
		if idx.isLeaf(idx.ordered[i].ID) {
			return idx.ordered[i].ID
		}
	}
	return ""
}

// latestLeafUnder returns the most recently created childless message in
// the subtree rooted at branchID, branchID included. If branchID is
// itself childless it is the answer.
func (idx *messageIndex) latestLeafUnder(branchID string) string {
	descendants := map[string]struct{}{branchID: {}}
	stack := []string{branchID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range idx.children[current] {
			if _, seen := descendants[childID]; seen {
				continue
			}
			descendants[childID] = struct{}{}
			stack = append(stack, childID)
		}
	}

	for i := len(idx.ordered) - 1; i >= 0; i-- {
		id := idx.ordered[i].ID
		if _, ok := descendants[id]; !ok {
			continue
		}
		if idx.isLeaf(id) {
			return id
		}
	}
	return ""
}

// pathToRoot walks parent pointers from leafID up to a root and returns
// the messages in root-to-leaf order. A parent pointer to a missing
// message or a cycle in stored data truncates the walk there, logged but
// not fatal, so a corrupt link loses history above it instead of the
// whole thread.
func (idx *messageIndex) pathToRoot(leafID string, logger *slog.Logger) []models.Message {
	var reversed []models.Message
	visited := make(map[string]struct{})

	currentID := leafID
	for {
		if _, seen := visited[currentID]; seen {
			logger.Warn("message parent chain contains a cycle; truncating thread",
				"message_id", currentID,
			)
			break
		}
		visited[currentID] = struct{}{}

		message, ok := idx.byID[currentID]
		if !ok {
			logger.Warn("message parent missing; truncating thread",
				"message_id", currentID,
			)
			break
		}
		reversed = append(reversed, *message)

		if message.ParentID == nil {
			break
		}
		currentID = *message.ParentID
	}

	path := make([]models.Message, len(reversed))
	for i, message := range reversed {
		path[len(reversed)-1-i] = message
	}
	return path
}
