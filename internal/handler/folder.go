package handler

import (
	"log/slog"
	"net/http"

	"imgtree/internal/domain/models"
	"imgtree/internal/domain/services"
	"imgtree/internal/httputil"
)

// FolderHandler handles folder tree operations on the caller's workspace
type FolderHandler struct {
	workspaces services.WorkspaceProvider
	logger     *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(workspaces services.WorkspaceProvider, logger *slog.Logger) *FolderHandler {
	return &FolderHandler{
		workspaces: workspaces,
		logger:     logger,
	}
}

// CreateFolderRequest is the body of POST /api/folders
type CreateFolderRequest struct {
	Name     string              `json:"name"`
	ParentID httputil.OptionalID `json:"parent_id"`
}

// UpdateFolderRequest is the body of PATCH /api/folders/{id}.
// parent_id moves the folder; the other fields are a partial update.
type UpdateFolderRequest struct {
	Name        *string             `json:"name"`
	AllowUpload *bool               `json:"allow_upload"`
	AllowSync   *bool               `json:"allow_sync"`
	ParentID    httputil.OptionalID `json:"parent_id"`
}

// SelectFolderRequest is the body of PUT /api/selection
type SelectFolderRequest struct {
	FolderID httputil.OptionalID `json:"folder_id"`
}

// Refresh reloads the caller's folders from the backend
// POST /api/folders/refresh
func (h *FolderHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	if err := ws.Refresh(r.Context()); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": ws.Folders()})
}

// ListFolders lists all folders, or the direct children of ?parent_id
// GET /api/folders
func (h *FolderHandler) ListFolders(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	if !r.URL.Query().Has("parent_id") {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": ws.Folders()})
		return
	}

	children, err := ws.ChildrenOf(httputil.QueryID(r, "parent_id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": children})
}

// CreateFolder adds a folder under parent_id, or at root level when it is absent or null
// POST /api/folders
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	var req CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	folder, err := ws.AddFolder(r.Context(), req.ParentID.Value, req.Name)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("folder created", "folder_id", folder.ID, "user_id", httputil.GetUserID(r))
	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// GetFolder returns one folder's contents: child folders and images
// GET /api/folders/{id}/contents
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	id := r.PathValue("id")
	contents, err := ws.Contents(r.Context(), &id)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contents)
}

// RootContents returns the root-level folders
// GET /api/contents
func (h *FolderHandler) RootContents(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	contents, err := ws.Contents(r.Context(), nil)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, contents)
}

// UpdateFolder renames, toggles flags and/or moves a folder
// PATCH /api/folders/{id}
func (h *FolderHandler) UpdateFolder(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	var req UpdateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := r.PathValue("id")
	patch := models.FolderPatch{
		Name:        req.Name,
		AllowUpload: req.AllowUpload,
		AllowSync:   req.AllowSync,
	}
	if patch.IsEmpty() && !req.ParentID.Present {
		httputil.RespondError(w, http.StatusBadRequest, "nothing to update")
		return
	}

	var move *models.FolderMove
	if req.ParentID.Present {
		move = &models.FolderMove{ParentID: req.ParentID.Value}
	}

	folder, err := ws.EditFolder(r.Context(), id, patch, move)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder removes a folder with its subtree
// DELETE /api/folders/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	removed, err := ws.DeleteFolder(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Debug("folder deleted", "folder_id", r.PathValue("id"), "removed", len(removed))
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"removed": removed})
}

// GetSelection returns the selected folder id, or null
// GET /api/selection
func (h *FolderHandler) GetSelection(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folder_id": ws.Selected()})
}

// SetSelection selects a folder; null clears the selection
// PUT /api/selection
func (h *FolderHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	var req SelectFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ws.SelectFolder(req.FolderID.Value); err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folder_id": ws.Selected()})
}
