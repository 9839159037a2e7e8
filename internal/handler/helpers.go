package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"imgtree/internal/domain"
	"imgtree/internal/domain/services"
	"imgtree/internal/httputil"
)

// problemFor maps an error to a status, detail and extra problem fields.
func problemFor(err error) (int, string, map[string]interface{}) {
	var (
		upstreamErr *domain.UpstreamError
		conflictErr *domain.ConflictError
		cycleErr    *domain.CycleDetectedError
	)

	switch {
	case errors.As(err, &upstreamErr):
		status := upstreamErr.StatusCode()
		// no answer or a 5xx is worth retrying; a 4xx is the backend's verdict
		return status, err.Error(), map[string]interface{}{"transient": status >= http.StatusInternalServerError}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, err.Error(), nil
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error(), nil
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, err.Error(), nil
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, err.Error(), nil
	case errors.As(err, &conflictErr):
		return http.StatusConflict, conflictErr.Error(), map[string]interface{}{
			"resource_type": conflictErr.ResourceType,
			"resource_id":   conflictErr.ResourceID,
		}
	case errors.As(err, &cycleErr):
		return http.StatusUnprocessableEntity, cycleErr.Error(), map[string]interface{}{"folder_id": cycleErr.FolderID}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "backend timed out", map[string]interface{}{"transient": true}
	default:
		return http.StatusInternalServerError, "internal server error", nil
	}
}

// handleError converts domain errors to HTTP responses
func handleError(w http.ResponseWriter, err error) {
	status, detail, extras := problemFor(err)
	httputil.RespondErrorWithExtras(w, status, detail, extras)
}

// workspaceFor resolves the caller's workspace, writing the error response if it cannot.
func workspaceFor(w http.ResponseWriter, r *http.Request, provider services.WorkspaceProvider) (services.WorkspaceService, bool) {
	session, ok := httputil.GetSession(r)
	if !ok {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return nil, false
	}

	ws, err := provider.Workspace(r.Context(), session)
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return ws, true
}

// extendDeadlines lifts the server's read and write deadlines for a long transfer.
// Writers that cannot set deadlines (e.g. test recorders) are left as they are.
func extendDeadlines(w http.ResponseWriter, d time.Duration) {
	rc := http.NewResponseController(w)
	deadline := time.Now().Add(d)
	_ = rc.SetReadDeadline(deadline)
	_ = rc.SetWriteDeadline(deadline)
}

// HealthCheck reports that the gateway is up
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
