package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/repositories"
)

// baseTime anchors the fake message clock so creation order is stable.
var baseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// In-memory repositories backing the service tests. They mirror the
// store contract: not-found errors wrap domain.ErrNotFound, list results
// are never nil, and list ordering matches the real queries.

type fakeWorkspaceRepo struct {
	workspaces map[string]*models.Workspace
}

func newFakeWorkspaceRepo() *fakeWorkspaceRepo {
	return &fakeWorkspaceRepo{workspaces: make(map[string]*models.Workspace)}
}

func (r *fakeWorkspaceRepo) Create(ctx context.Context, workspace *models.Workspace) error {
	if _, ok := r.workspaces[workspace.ID]; ok {
		return fmt.Errorf("workspace %s: %w", workspace.ID, domain.ErrConflict)
	}
	if workspace.Settings == nil {
		workspace.Settings = map[string]interface{}{}
	}
	copied := *workspace
	r.workspaces[workspace.ID] = &copied
	return nil
}

func (r *fakeWorkspaceRepo) GetByID(ctx context.Context, id string) (*models.Workspace, error) {
	workspace, ok := r.workspaces[id]
	if !ok {
		return nil, fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	copied := *workspace
	return &copied, nil
}

func (r *fakeWorkspaceRepo) List(ctx context.Context) ([]models.Workspace, error) {
	workspaces := []models.Workspace{}
	for _, workspace := range r.workspaces {
		workspaces = append(workspaces, *workspace)
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].ID < workspaces[j].ID })
	return workspaces, nil
}

func (r *fakeWorkspaceRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := r.workspaces[id]
	return ok, nil
}

func (r *fakeWorkspaceRepo) UpdateSettings(ctx context.Context, id string, settings map[string]interface{}) error {
	workspace, ok := r.workspaces[id]
	if !ok {
		return fmt.Errorf("workspace %s: %w", id, domain.ErrNotFound)
	}
	workspace.Settings = settings
	return nil
}

type fakeFolderRepo struct {
	folders map[string]*models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (r *fakeFolderRepo) Create(ctx context.Context, folder *models.Folder) error {
	if _, ok := r.folders[folder.ID]; ok {
		return fmt.Errorf("folder %s: %w", folder.ID, domain.ErrConflict)
	}
	copied := *folder
	r.folders[folder.ID] = &copied
	return nil
}

func (r *fakeFolderRepo) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	folder, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := *folder
	return &copied, nil
}

func (r *fakeFolderRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Folder, error) {
	folders := []models.Folder{}
	for _, folder := range r.folders {
		if folder.WorkspaceID == workspaceID {
			folders = append(folders, *folder)
		}
	}
	sort.Slice(folders, func(i, j int) bool { return folders[i].ID < folders[j].ID })
	return folders, nil
}

func (r *fakeFolderRepo) ListChildren(ctx context.Context, workspaceID string, parentID *string) ([]models.Folder, error) {
	folders := []models.Folder{}
	for _, folder := range r.folders {
		if folder.WorkspaceID != workspaceID {
			continue
		}
		if !ptrEqual(folder.ParentID, parentID) {
			continue
		}
		folders = append(folders, *folder)
	}
	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Name != folders[j].Name {
			return folders[i].Name < folders[j].Name
		}
		return folders[i].ID < folders[j].ID
	})
	return folders, nil
}

func (r *fakeFolderRepo) CountChildFolders(ctx context.Context, workspaceID string, parentIDs []string) (map[string]int, error) {
	wanted := make(map[string]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = struct{}{}
	}
	counts := map[string]int{}
	for _, folder := range r.folders {
		if folder.WorkspaceID != workspaceID || folder.ParentID == nil {
			continue
		}
		if _, ok := wanted[*folder.ParentID]; ok {
			counts[*folder.ParentID]++
		}
	}
	return counts, nil
}

func (r *fakeFolderRepo) UpdateName(ctx context.Context, id, name string) error {
	folder, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder.Name = name
	return nil
}

func (r *fakeFolderRepo) SetParent(ctx context.Context, id string, parentID *string) error {
	folder, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	folder.ParentID = parentID
	return nil
}

func (r *fakeFolderRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		delete(r.folders, id)
	}
	return nil
}

type fakeChatRepo struct {
	chats map[string]*models.Chat

	// onDeleteChat lets the message fake cascade like the store does.
	onDeleteChat func(chatID string)
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{chats: make(map[string]*models.Chat)}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *models.Chat) error {
	if _, ok := r.chats[chat.ID]; ok {
		return fmt.Errorf("chat %s: %w", chat.ID, domain.ErrConflict)
	}
	copied := *chat
	r.chats[chat.ID] = &copied
	return nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	chat, ok := r.chats[id]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	copied := *chat
	return &copied, nil
}

func (r *fakeChatRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := r.chats[id]
	return ok, nil
}

func (r *fakeChatRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]models.Chat, error) {
	chats := []models.Chat{}
	for _, chat := range r.chats {
		if chat.WorkspaceID == workspaceID {
			chats = append(chats, *chat)
		}
	}
	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })
	return chats, nil
}

func (r *fakeChatRepo) ListByFolder(ctx context.Context, workspaceID string, folderID *string) ([]models.Chat, error) {
	chats := []models.Chat{}
	for _, chat := range r.chats {
		if chat.WorkspaceID != workspaceID {
			continue
		}
		if !ptrEqual(chat.FolderID, folderID) {
			continue
		}
		chats = append(chats, *chat)
	}
	sort.Slice(chats, func(i, j int) bool {
		if chats[i].Title != chats[j].Title {
			return chats[i].Title < chats[j].Title
		}
		return chats[i].ID < chats[j].ID
	})
	return chats, nil
}

func (r *fakeChatRepo) CountByFolder(ctx context.Context, workspaceID string, folderIDs []string) (map[string]int, error) {
	wanted := make(map[string]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = struct{}{}
	}
	counts := map[string]int{}
	for _, chat := range r.chats {
		if chat.WorkspaceID != workspaceID || chat.FolderID == nil {
			continue
		}
		if _, ok := wanted[*chat.FolderID]; ok {
			counts[*chat.FolderID]++
		}
	}
	return counts, nil
}

func (r *fakeChatRepo) UpdateTitle(ctx context.Context, id, title string) error {
	chat, ok := r.chats[id]
	if !ok {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	chat.Title = title
	return nil
}

func (r *fakeChatRepo) SetFolder(ctx context.Context, id string, folderID *string) error {
	chat, ok := r.chats[id]
	if !ok {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	chat.FolderID = folderID
	return nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.chats[id]; !ok {
		return fmt.Errorf("chat %s: %w", id, domain.ErrNotFound)
	}
	delete(r.chats, id)
	if r.onDeleteChat != nil {
		r.onDeleteChat(id)
	}
	return nil
}

func (r *fakeChatRepo) DeleteByFolderIDs(ctx context.Context, folderIDs []string) error {
	wanted := make(map[string]struct{}, len(folderIDs))
	for _, id := range folderIDs {
		wanted[id] = struct{}{}
	}
	for id, chat := range r.chats {
		if chat.FolderID == nil {
			continue
		}
		if _, ok := wanted[*chat.FolderID]; ok {
			delete(r.chats, id)
			if r.onDeleteChat != nil {
				r.onDeleteChat(id)
			}
		}
	}
	return nil
}

type fakeMessageRepo struct {
	messages map[string]*models.Message
	seq      int
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[string]*models.Message)}
}

func (r *fakeMessageRepo) ListByChat(ctx context.Context, chatID string) ([]models.Message, error) {
	messages := []models.Message{}
	for _, message := range r.messages {
		if message.ChatID == chatID {
			messages = append(messages, *message)
		}
	}
	sort.Slice(messages, func(i, j int) bool {
		if !messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].CreatedAt.Before(messages[j].CreatedAt)
		}
		return messages[i].ID < messages[j].ID
	})
	return messages, nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	message, ok := r.messages[id]
	if !ok {
		return nil, fmt.Errorf("message %s: %w", id, domain.ErrNotFound)
	}
	copied := *message
	return &copied, nil
}

func (r *fakeMessageRepo) Upsert(ctx context.Context, message *models.Message) error {
	if existing, ok := r.messages[message.ID]; ok {
		message.CreatedAt = existing.CreatedAt
	} else {
		r.seq++
		message.CreatedAt = baseTime.Add(time.Duration(r.seq) * time.Second)
	}
	message.UpdatedAt = message.CreatedAt
	copied := *message
	r.messages[message.ID] = &copied
	return nil
}

func (r *fakeMessageRepo) deleteByChat(chatID string) {
	for id, message := range r.messages {
		if message.ChatID == chatID {
			delete(r.messages, id)
		}
	}
}

// fakeTxManager runs the function directly; the fakes have no
// transactions to demarcate.
type fakeTxManager struct{}

func (m *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func ptrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtr(s string) *string {
	return &s
}
