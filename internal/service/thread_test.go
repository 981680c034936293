package service

import (
	"context"
	"errors"
	"testing"

	"mynth/internal/domain"
	"mynth/internal/domain/models"
	"mynth/internal/domain/services"
)

type threadFixture struct {
	svc      services.ThreadService
	chats    *fakeChatRepo
	messages *fakeMessageRepo
}

func newThreadFixture(t *testing.T) *threadFixture {
	t.Helper()

	chats := newFakeChatRepo()
	messages := newFakeMessageRepo()
	chats.onDeleteChat = messages.deleteByChat

	if err := chats.Create(context.Background(), &models.Chat{ID: "chat1", WorkspaceID: "ws1", Title: "Chat"}); err != nil {
		t.Fatalf("seed chat: %v", err)
	}

	return &threadFixture{
		svc:      NewThreadService(chats, messages, discardLogger()),
		chats:    chats,
		messages: messages,
	}
}

func (f *threadFixture) mustUpsert(t *testing.T, id string, parentID *string, role models.MessageRole) *models.Message {
	t.Helper()
	message, err := f.svc.UpsertMessage(context.Background(), &services.UpsertMessageRequest{
		ID:       id,
		ChatID:   "chat1",
		ParentID: parentID,
		Role:     role,
		Parts:    []map[string]interface{}{{"type": "text", "text": "msg " + id}},
	})
	if err != nil {
		t.Fatalf("upsert %s: %v", id, err)
	}
	return message
}

func pathIDs(messages []models.Message) []string {
	ids := make([]string, len(messages))
	for i, message := range messages {
		ids[i] = message.ID
	}
	return ids
}

func assertPath(t *testing.T, got []models.Message, want ...string) {
	t.Helper()
	ids := pathIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("path = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("path = %v, want %v", ids, want)
		}
	}
}

func TestListMessagesEmptyChat(t *testing.T) {
	f := newThreadFixture(t)

	messages, err := f.svc.ListMessages(context.Background(), "chat1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if messages == nil || len(messages) != 0 {
		t.Errorf("expected empty slice, got %v", messages)
	}
}

func TestListMessagesUnknownChat(t *testing.T) {
	f := newThreadFixture(t)

	_, err := f.svc.ListMessages(context.Background(), "ghost", nil)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListMessagesLinearThread(t *testing.T) {
	f := newThreadFixture(t)

	f.mustUpsert(t, "m1", nil, models.RoleUser)
	f.mustUpsert(t, "m2", strPtr("m1"), models.RoleAssistant)
	f.mustUpsert(t, "m3", strPtr("m2"), models.RoleUser)

	messages, err := f.svc.ListMessages(context.Background(), "chat1", nil)
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, messages, "m1", "m2", "m3")
}

func TestListMessagesDefaultBranchPicksNewestLeaf(t *testing.T) {
	f := newThreadFixture(t)

	// m1 has two children: m2 (older) and m3 (newer). The default view
	// follows the newest leaf.
	f.mustUpsert(t, "m1", nil, models.RoleUser)
	f.mustUpsert(t, "m2", strPtr("m1"), models.RoleAssistant)
	f.mustUpsert(t, "m3", strPtr("m1"), models.RoleAssistant)

	messages, err := f.svc.ListMessages(context.Background(), "chat1", nil)
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, messages, "m1", "m3")
}

func TestListMessagesExplicitBranch(t *testing.T) {
	f := newThreadFixture(t)

	f.mustUpsert(t, "m1", nil, models.RoleUser)
	f.mustUpsert(t, "m2", strPtr("m1"), models.RoleAssistant)
	f.mustUpsert(t, "m3", strPtr("m1"), models.RoleAssistant)

	messages, err := f.svc.ListMessages(context.Background(), "chat1", strPtr("m2"))
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, messages, "m1", "m2")
}

func TestListMessagesBranchDescendsToNewestLeaf(t *testing.T) {
	f := newThreadFixture(t)

	// Branching at m2 must resolve to the deepest newest leaf under it,
	// not to m2 itself.
	f.mustUpsert(t, "m1", nil, models.RoleUser)
	f.mustUpsert(t, "m2", strPtr("m1"), models.RoleAssistant)
	f.mustUpsert(t, "m3", strPtr("m2"), models.RoleUser)
	f.mustUpsert(t, "m4", strPtr("m2"), models.RoleUser)

	messages, err := f.svc.ListMessages(context.Background(), "chat1", strPtr("m2"))
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, messages, "m1", "m2", "m4")
}

func TestListMessagesUnknownBranch(t *testing.T) {
	f := newThreadFixture(t)
	f.mustUpsert(t, "m1", nil, models.RoleUser)

	_, err := f.svc.ListMessages(context.Background(), "chat1", strPtr("ghost"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestListMessagesTruncatesOnMissingParent(t *testing.T) {
	f := newThreadFixture(t)

	// m2's parent never existed; the walk keeps what it can reach.
	f.messages.messages["m2"] = &models.Message{
		ID:        "m2",
		ChatID:    "chat1",
		ParentID:  strPtr("ghost"),
		Role:      models.RoleAssistant,
		CreatedAt: baseTime,
	}

	messages, err := f.svc.ListMessages(context.Background(), "chat1", nil)
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, messages, "m2")
}

func TestListMessagesTruncatesOnParentCycle(t *testing.T) {
	f := newThreadFixture(t)

	// a and b point at each other; c hangs off b. The walk from c keeps
	// c, b, a and stops when it would revisit b.
	f.messages.messages["a"] = &models.Message{
		ID: "a", ChatID: "chat1", ParentID: strPtr("b"),
		Role: models.RoleUser, CreatedAt: baseTime,
	}
	f.messages.messages["b"] = &models.Message{
		ID: "b", ChatID: "chat1", ParentID: strPtr("a"),
		Role: models.RoleAssistant, CreatedAt: baseTime.Add(1),
	}
	f.messages.messages["c"] = &models.Message{
		ID: "c", ChatID: "chat1", ParentID: strPtr("b"),
		Role: models.RoleUser, CreatedAt: baseTime.Add(2),
	}

	messages, err := f.svc.ListMessages(context.Background(), "chat1", nil)
	if err != nil {
		t.Fatal(err)
	}
	assertPath(t, messages, "a", "b", "c")
}

func TestUpsertMessageReplacesContent(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	f.mustUpsert(t, "m1", nil, models.RoleUser)
	first, err := f.messages.GetByID(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}

	// Same id again with new parts: the row is replaced, not duplicated,
	// and created_at is preserved.
	_, err = f.svc.UpsertMessage(ctx, &services.UpsertMessageRequest{
		ID:     "m1",
		ChatID: "chat1",
		Role:   models.RoleUser,
		Parts:  []map[string]interface{}{{"type": "text", "text": "edited"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	all, err := f.messages.ListByChat(ctx, "chat1")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 message after re-upsert, got %d", len(all))
	}
	if all[0].Parts[0]["text"] != "edited" {
		t.Errorf("parts not replaced: %v", all[0].Parts)
	}
	if !all[0].CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed on replace")
	}
}

func TestUpsertMessageUnknownChat(t *testing.T) {
	f := newThreadFixture(t)

	_, err := f.svc.UpsertMessage(context.Background(), &services.UpsertMessageRequest{
		ID:     "m1",
		ChatID: "ghost",
		Role:   models.RoleUser,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestUpsertMessageValidation(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *services.UpsertMessageRequest
	}{
		{"missing id", &services.UpsertMessageRequest{ChatID: "chat1", Role: models.RoleUser}},
		{"missing chat", &services.UpsertMessageRequest{ID: "m1", Role: models.RoleUser}},
		{"bad role", &services.UpsertMessageRequest{ID: "m1", ChatID: "chat1", Role: "robot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.UpsertMessage(ctx, tt.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpsertMessageRejectsSelfParent(t *testing.T) {
	f := newThreadFixture(t)

	_, err := f.svc.UpsertMessage(context.Background(), &services.UpsertMessageRequest{
		ID:       "m1",
		ChatID:   "chat1",
		ParentID: strPtr("m1"),
		Role:     models.RoleUser,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestUpsertMessageRejectsParentFromOtherChat(t *testing.T) {
	f := newThreadFixture(t)
	ctx := context.Background()

	if err := f.chats.Create(ctx, &models.Chat{ID: "chat2", WorkspaceID: "ws1", Title: "Other"}); err != nil {
		t.Fatal(err)
	}
	f.mustUpsert(t, "m1", nil, models.RoleUser)

	_, err := f.svc.UpsertMessage(ctx, &services.UpsertMessageRequest{
		ID:       "m2",
		ChatID:   "chat2",
		ParentID: strPtr("m1"),
		Role:     models.RoleUser,
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
