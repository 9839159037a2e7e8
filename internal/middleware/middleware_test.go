package middleware

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
	"imgtree/internal/httputil"
)

type stubVerifier struct {
	claims *models.Claims
	err    error
	got    string
}

func (s *stubVerifier) VerifyToken(token string) (*models.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func (s *stubVerifier) Close() error { return nil }

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestAuth(t *testing.T) {
	claims := &models.Claims{UserID: "9", Email: "a@x.io"}

	tests := []struct {
		name       string
		header     string
		verifier   *stubVerifier
		wantStatus int
	}{
		{"valid", "Bearer abc", &stubVerifier{claims: claims}, http.StatusOK},
		{"lowercase scheme", "bearer abc", &stubVerifier{claims: claims}, http.StatusOK},
		{"missing header", "", &stubVerifier{claims: claims}, http.StatusUnauthorized},
		{"basic scheme", "Basic abc", &stubVerifier{claims: claims}, http.StatusUnauthorized},
		{"empty token", "Bearer   ", &stubVerifier{claims: claims}, http.StatusUnauthorized},
		{"rejected", "Bearer abc", &stubVerifier{err: &domain.UnauthorizedError{Message: "token expired"}}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen models.Session
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = httputil.GetSession(r)
				w.WriteHeader(http.StatusOK)
			})

			r := httptest.NewRequest(http.MethodGet, "/api/tree", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			Auth(tt.verifier, discard())(next).ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "abc", tt.verifier.got)
				assert.Equal(t, models.Session{UserID: "9", Token: "abc", Email: "a@x.io"}, seen)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	h := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "internal server error")
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestRecovery_ReraisesAbort(t *testing.T) {
	h := Recovery(discard())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	require.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	h := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}),
		RequestLogger(logger),
		Recovery(logger),
	)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/images/3", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	line := logs.String()
	assert.Contains(t, line, `"level":"WARN"`)
	assert.Contains(t, line, `"status":404`)
	assert.Contains(t, line, `"method":"DELETE"`)
	assert.True(t, strings.Contains(line, `"path":"/api/images/3"`))
}
