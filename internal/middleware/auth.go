package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"imgtree/internal/auth"
	"imgtree/internal/domain/models"
	"imgtree/internal/httputil"
)

// Auth resolves "Authorization: Bearer <token>" into a Session on the request
// context. Requests without a usable token get a 401.
func Auth(verifier auth.TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("rejected token", "path", r.URL.Path, "error", err)
				httputil.RespondError(w, http.StatusUnauthorized, err.Error())
				return
			}

			session := models.Session{
				UserID: claims.GetUserID(),
				Token:  token,
				Email:  claims.Email,
			}
			next.ServeHTTP(w, httputil.WithSession(r, session))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
