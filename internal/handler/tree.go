package handler

import (
	"log/slog"
	"net/http"

	"imgtree/internal/domain/services"
	"imgtree/internal/httputil"
)

// TreeHandler serves the nested folder view
type TreeHandler struct {
	workspaces services.WorkspaceProvider
	logger     *slog.Logger
}

// NewTreeHandler creates a new tree handler
func NewTreeHandler(workspaces services.WorkspaceProvider, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{
		workspaces: workspaces,
		logger:     logger,
	}
}

// GetTree returns the nested folder tree. ?format=yaml exports YAML instead.
// GET /api/tree
func (h *TreeHandler) GetTree(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"folders": ws.Tree()})
		return
	}

	body, err := ws.Export(format)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondBytes(w, http.StatusOK, "application/yaml", body)
}

// RenderTree returns the tree as indented text
// GET /api/tree/render
func (h *TreeHandler) RenderTree(w http.ResponseWriter, r *http.Request) {
	ws, ok := workspaceFor(w, r, h.workspaces)
	if !ok {
		return
	}
	httputil.RespondBytes(w, http.StatusOK, "text/plain; charset=utf-8", []byte(ws.Render()))
}
