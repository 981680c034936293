package service

import (
	"context"
	"errors"
	"testing"

	"mynth/internal/domain"
	"mynth/internal/domain/services"
	"mynth/internal/uuidv7"
)

func newWorkspaceService(repo *fakeWorkspaceRepo) services.WorkspaceService {
	return NewWorkspaceService(repo, uuidv7.New(), discardLogger())
}

func TestCreateWorkspaceGeneratesID(t *testing.T) {
	svc := newWorkspaceService(newFakeWorkspaceRepo())

	workspace, err := svc.CreateWorkspace(context.Background(), &services.CreateWorkspaceRequest{
		Name: "Home",
	})
	if err != nil {
		t.Fatal(err)
	}
	if workspace.ID == "" {
		t.Error("expected generated id")
	}
	if workspace.Settings == nil {
		t.Error("settings must be initialized")
	}
}

func TestCreateWorkspaceWithClientID(t *testing.T) {
	svc := newWorkspaceService(newFakeWorkspaceRepo())

	const id = "018f3b2a-1c4d-7e5f-8a9b-0c1d2e3f4a5b"
	workspace, err := svc.CreateWorkspace(context.Background(), &services.CreateWorkspaceRequest{
		ID:   id,
		Name: "Synced",
	})
	if err != nil {
		t.Fatal(err)
	}
	if workspace.ID != id {
		t.Errorf("id = %q, want %q", workspace.ID, id)
	}
}

func TestCreateWorkspaceRejectsNonUUID(t *testing.T) {
	svc := newWorkspaceService(newFakeWorkspaceRepo())

	_, err := svc.CreateWorkspace(context.Background(), &services.CreateWorkspaceRequest{
		ID:   "not-a-uuid",
		Name: "Bad",
	})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateWorkspaceEmptyName(t *testing.T) {
	svc := newWorkspaceService(newFakeWorkspaceRepo())

	_, err := svc.CreateWorkspace(context.Background(), &services.CreateWorkspaceRequest{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateWorkspaceDuplicateIDConflicts(t *testing.T) {
	svc := newWorkspaceService(newFakeWorkspaceRepo())
	ctx := context.Background()

	const id = "018f3b2a-1c4d-7e5f-8a9b-0c1d2e3f4a5b"
	if _, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ID: id, Name: "First"}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.CreateWorkspace(ctx, &services.CreateWorkspaceRequest{ID: id, Name: "Second"})

	var conflictErr *domain.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if conflictErr.ResourceID != id {
		t.Errorf("ResourceID = %q, want %q", conflictErr.ResourceID, id)
	}
}
