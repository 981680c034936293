package service

import (
	"io"
	"log/slog"
	"reflect"
	"sort"
	"testing"

	"mynth/internal/domain/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeFolder(id string, parentID *string) models.Folder {
	return models.Folder{
		ID:          id,
		WorkspaceID: "ws1",
		ParentID:    parentID,
		Name:        "folder " + id,
	}
}

func makeChat(id string, folderID *string) models.Chat {
	return models.Chat{
		ID:          id,
		WorkspaceID: "ws1",
		FolderID:    folderID,
		Title:       "chat " + id,
	}
}

func TestWouldCreateCycle(t *testing.T) {
	// a -> b -> c (c is root)
	folders := []models.Folder{
		makeFolder("c", nil),
		makeFolder("b", strPtr("c")),
		makeFolder("a", strPtr("b")),
		makeFolder("x", nil),
	}
	parents := folderParents(folders)

	tests := []struct {
		name     string
		folderID string
		parentID string
		want     bool
	}{
		{"move into own child", "b", "a", true},
		{"move into self", "a", "a", true},
		{"move root into descendant", "c", "a", true},
		{"move into sibling tree", "a", "x", false},
		{"move leaf deeper is fine", "x", "a", false},
		{"unknown parent terminates walk", "a", "ghost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := wouldCreateCycle(tt.folderID, tt.parentID, parents)
			if got != tt.want {
				t.Errorf("wouldCreateCycle(%q, %q) = %v, want %v", tt.folderID, tt.parentID, got, tt.want)
			}
		})
	}
}

func TestWouldCreateCycleTerminatesOnCorruptChain(t *testing.T) {
	// b and c already point at each other in stored data.
	folders := []models.Folder{
		makeFolder("b", strPtr("c")),
		makeFolder("c", strPtr("b")),
	}
	parents := folderParents(folders)

	// The walk must terminate and report a cycle rather than loop forever.
	if !wouldCreateCycle("a", "b", parents) {
		t.Error("expected cycle detection on corrupt parent chain")
	}
}

func TestCollectSubtreeIDs(t *testing.T) {
	//      root
	//     /    \
	//    a      b
	//   / \
	//  c   d
	folders := []models.Folder{
		makeFolder("root", nil),
		makeFolder("a", strPtr("root")),
		makeFolder("b", strPtr("root")),
		makeFolder("c", strPtr("a")),
		makeFolder("d", strPtr("a")),
		makeFolder("other", nil),
	}

	got := collectSubtreeIDs(folders, "root")

	want := []string{"root", "a", "b", "c", "d"}
	sort.Strings(got)
	sort.Strings(want)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectSubtreeIDs = %v, want %v", got, want)
	}
}

func TestCollectSubtreeIDsIncludesRootOnly(t *testing.T) {
	folders := []models.Folder{
		makeFolder("lone", nil),
		makeFolder("other", nil),
	}

	got := collectSubtreeIDs(folders, "lone")
	if len(got) != 1 || got[0] != "lone" {
		t.Errorf("collectSubtreeIDs = %v, want [lone]", got)
	}
}

func TestCollectSubtreeIDsTerminatesOnCycle(t *testing.T) {
	folders := []models.Folder{
		makeFolder("a", strPtr("b")),
		makeFolder("b", strPtr("a")),
	}

	got := collectSubtreeIDs(folders, "a")

	sort.Strings(got)
	want := []string{"a", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collectSubtreeIDs = %v, want %v", got, want)
	}
}

func TestBuildTreeSnapshotNestsChildren(t *testing.T) {
	folders := []models.Folder{
		makeFolder("root", nil),
		makeFolder("child", strPtr("root")),
	}
	chats := []models.Chat{
		makeChat("chat-root", nil),
		makeChat("chat-in-child", strPtr("child")),
	}

	tree := buildTreeSnapshot("ws1", folders, chats, discardLogger())

	if len(tree.RootFolders) != 1 {
		t.Fatalf("expected 1 root folder, got %d", len(tree.RootFolders))
	}
	root := tree.RootFolders[0]
	if root.ID != "root" || len(root.Folders) != 1 || root.Folders[0].ID != "child" {
		t.Errorf("unexpected nesting: root=%s children=%d", root.ID, len(root.Folders))
	}
	if len(root.Folders[0].Chats) != 1 || root.Folders[0].Chats[0].ID != "chat-in-child" {
		t.Errorf("chat not attached to child folder")
	}
	if len(tree.RootChats) != 1 || tree.RootChats[0].ID != "chat-root" {
		t.Errorf("root chat missing: %v", tree.RootChats)
	}
}

func TestBuildTreeSnapshotCorruptRowsBecomeRoots(t *testing.T) {
	tests := []struct {
		name    string
		folders []models.Folder
	}{
		{
			name: "self parent",
			folders: []models.Folder{
				makeFolder("bad", strPtr("bad")),
			},
		},
		{
			name: "missing parent",
			folders: []models.Folder{
				makeFolder("bad", strPtr("ghost")),
			},
		},
		{
			name: "two folder cycle",
			folders: []models.Folder{
				makeFolder("bad", strPtr("other")),
				makeFolder("other", strPtr("bad")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := buildTreeSnapshot("ws1", tt.folders, nil, discardLogger())

			if len(tree.RootFolders) != len(tt.folders) {
				t.Errorf("expected %d root folders, got %d", len(tt.folders), len(tree.RootFolders))
			}
		})
	}
}

func TestBuildTreeSnapshotChatWithMissingFolderBecomesRoot(t *testing.T) {
	chats := []models.Chat{
		makeChat("orphan", strPtr("ghost")),
	}

	tree := buildTreeSnapshot("ws1", nil, chats, discardLogger())

	if len(tree.RootChats) != 1 || tree.RootChats[0].ID != "orphan" {
		t.Errorf("orphan chat should surface at root, got %v", tree.RootChats)
	}
}

func TestBuildTreeSnapshotEmptyWorkspace(t *testing.T) {
	tree := buildTreeSnapshot("ws1", nil, nil, discardLogger())

	if tree.RootFolders == nil || tree.RootChats == nil {
		t.Error("empty tree must use empty slices, not nil")
	}
	if len(tree.RootFolders) != 0 || len(tree.RootChats) != 0 {
		t.Errorf("expected empty tree, got %d folders %d chats", len(tree.RootFolders), len(tree.RootChats))
	}
}
