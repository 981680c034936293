package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"mynth/internal/domain/services"
	"mynth/internal/httputil"
)

// TreeHandler handles HTTP requests for the folder/chat tree
type TreeHandler struct {
	treeService services.TreeService
	logger      *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(treeService services.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		treeService: treeService,
		logger:      logger,
	}
}

// GetTree returns the nested folder/chat tree for a workspace
// GET /api/workspaces/{id}/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	tree, err := h.treeService.GetTree(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}

// GetChildren returns one tree level with child counts
// GET /api/workspaces/{id}/children?parent_id={folderID}
func (h *TreeHandler) GetChildren(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var parentFolderID *string
	if parent := r.URL.Query().Get("parent_id"); parent != "" {
		if _, err := uuid.Parse(parent); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "invalid parent_id")
			return
		}
		parentFolderID = &parent
	}

	children, err := h.treeService.GetChildren(r.Context(), workspaceID, parentFolderID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, children)
}

// GetTreeUIState returns the persisted expanded-folder set
// GET /api/workspaces/{id}/tree-state
func (h *TreeHandler) GetTreeUIState(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	state, err := h.treeService.GetTreeUIState(r.Context(), workspaceID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// SetTreeUIState replaces the persisted expanded-folder set
// PUT /api/workspaces/{id}/tree-state
func (h *TreeHandler) SetTreeUIState(w http.ResponseWriter, r *http.Request) {
	workspaceID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		ExpandedFolderIDs []string `json:"expanded_folder_ids"`
	}
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	state, err := h.treeService.SetTreeUIState(r.Context(), workspaceID, req.ExpandedFolderIDs)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, state)
}

// CreateFolder creates a new folder
// POST /api/folders
func (h *TreeHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	folder, err := h.treeService.CreateFolder(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// UpdateFolderRequest is a PATCH body for folders. ParentID uses RFC 7396
// semantics: absent means leave in place, null means move to the
// workspace root.
type UpdateFolderRequest struct {
	Name     *string                 `json:"name"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// UpdateFolder renames and/or moves a folder
// PATCH /api/folders/{id}
func (h *TreeHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Name == nil && !req.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "at least one field must be provided")
		return
	}

	var result interface{}

	if req.Name != nil {
		renamed, err := h.treeService.UpdateFolderName(r.Context(), id, *req.Name)
		if err != nil {
			handleError(w, err)
			return
		}
		result = renamed
	}

	if req.ParentID.Present {
		moved, err := h.treeService.MoveFolder(r.Context(), id, req.ParentID.Value)
		if err != nil {
			handleError(w, err)
			return
		}
		result = moved
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// DeleteFolder deletes a folder with its entire subtree
// DELETE /api/folders/{id}
func (h *TreeHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.treeService.DeleteFolderRecursive(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateChat creates a new chat
// POST /api/chats
func (h *TreeHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req services.CreateChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chat, err := h.treeService.CreateChat(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, chat)
}

// GetChat retrieves a chat by ID
// GET /api/chats/{id}
func (h *TreeHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	chat, err := h.treeService.GetChat(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, chat)
}

// UpdateChatRequest is a PATCH body for chats. FolderID uses RFC 7396
// semantics: absent means leave in place, null means move to the
// workspace root.
type UpdateChatRequest struct {
	Title    *string                 `json:"title"`
	FolderID httputil.OptionalString `json:"folder_id"`
}

// UpdateChat renames and/or moves a chat
// PATCH /api/chats/{id}
func (h *TreeHandler) UpdateChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Title == nil && !req.FolderID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "at least one field must be provided")
		return
	}

	var result interface{}

	if req.Title != nil {
		renamed, err := h.treeService.UpdateChatTitle(r.Context(), id, *req.Title)
		if err != nil {
			handleError(w, err)
			return
		}
		result = renamed
	}

	if req.FolderID.Present {
		moved, err := h.treeService.MoveChat(r.Context(), id, req.FolderID.Value)
		if err != nil {
			handleError(w, err)
			return
		}
		result = moved
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// DeleteChat deletes a chat and its messages
// DELETE /api/chats/{id}
func (h *TreeHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.treeService.DeleteChat(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
