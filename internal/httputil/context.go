package httputil

import (
	"context"
	"net/http"

	"imgtree/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const (
	sessionKey contextKey = "session"
)

// WithSession adds the caller's session to the request context
func WithSession(r *http.Request, s models.Session) *http.Request {
	ctx := context.WithValue(r.Context(), sessionKey, s)
	return r.WithContext(ctx)
}

// GetSession retrieves the session from context; ok is false if none was set
func GetSession(r *http.Request) (models.Session, bool) {
	s, ok := r.Context().Value(sessionKey).(models.Session)
	return s, ok
}

// GetUserID retrieves the caller's user id, or "" if not authenticated
func GetUserID(r *http.Request) string {
	s, _ := GetSession(r)
	return s.UserID
}
