package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"imgtree/internal/config"
	"imgtree/internal/domain/models"
	"imgtree/internal/domain/services"
	"imgtree/internal/httputil"
)

// driveTokenHeader carries the caller's Google access token for picker calls.
const driveTokenHeader = "X-Drive-Token"

// DriveHandler lists Drive images and imports picked files
type DriveHandler struct {
	workspaces services.WorkspaceProvider
	logger     *slog.Logger
}

// NewDriveHandler creates a new drive handler
func NewDriveHandler(workspaces services.WorkspaceProvider, logger *slog.Logger) *DriveHandler {
	return &DriveHandler{
		workspaces: workspaces,
		logger:     logger,
	}
}

// ImportRequest is the body of POST /api/folders/{id}/import
type ImportRequest struct {
	AccessToken string              `json:"access_token"`
	Files       []models.PickedFile `json:"files"`
}

// ListPickerImages lists image files in the caller's Drive
// GET /api/drive/images?page_size=20
func (h *DriveHandler) ListPickerImages(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	pageSize := 0
	if v := r.URL.Query().Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "page_size must be an integer")
			return
		}
		pageSize = n
	}

	token := strings.TrimSpace(r.Header.Get(driveTokenHeader))
	files, err := ws.PickerImages(r.Context(), token, pageSize)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// ImportPicked copies picked Drive files into a folder
// POST /api/folders/{id}/import
func (h *DriveHandler) ImportPicked(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	extendDeadlines(w, config.TransferTimeout)

	var req ImportRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.AccessToken == "" {
		req.AccessToken = strings.TrimSpace(r.Header.Get(driveTokenHeader))
	}

	folderID := r.PathValue("id")
	result, err := ws.ImportPicked(r.Context(), folderID, req.AccessToken, req.Files)
	if err != nil {
		handleError(w, err)
		return
	}

	h.logger.Info("drive import completed",
		"folder_id", folderID,
		"imported", len(result.Imported),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)
	httputil.RespondJSON(w, http.StatusOK, result)
}
