package handler

import (
	"log/slog"
	"net/http"

	"imgtree/internal/domain/models"
	"imgtree/internal/domain/services"
	"imgtree/internal/httputil"
)

// PermissionHandler manages who a folder is shared with
type PermissionHandler struct {
	workspaces services.WorkspaceProvider
	logger     *slog.Logger
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(workspaces services.WorkspaceProvider, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{
		workspaces: workspaces,
		logger:     logger,
	}
}

// ShareRequest is the body of POST /api/folders/{id}/permissions
type ShareRequest struct {
	Email  string         `json:"email"`
	Grants []models.Grant `json:"permissions"`
}

// ListPermissions returns the folder's grants per email
// GET /api/folders/{id}/permissions
func (h *PermissionHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	perms, err := ws.Permissions(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}

// Share grants an email access to the folder, replacing its previous grants
// POST /api/folders/{id}/permissions
func (h *PermissionHandler) Share(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	var req ShareRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	perms, err := ws.Share(r.Context(), r.PathValue("id"), req.Email, req.Grants)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}

// Unshare revokes all grants an email holds on the folder
// DELETE /api/folders/{id}/permissions/{email}
func (h *PermissionHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	perms, err := ws.Unshare(r.Context(), r.PathValue("id"), r.PathValue("email"))
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}
