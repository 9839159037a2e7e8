package handler

import (
	"log/slog"
	"net/http"

	"imgtree/internal/domain/services"
	"imgtree/internal/httputil"
)

// SessionDropper forgets a user's server-side workspace
type SessionDropper interface {
	Drop(userID string)
}

// AccountHandler handles login, registration and logout
type AccountHandler struct {
	accounts services.AccountService
	sessions SessionDropper
	logger   *slog.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts services.AccountService, sessions SessionDropper, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		sessions: sessions,
		logger:   logger,
	}
}

// Login exchanges email and password for a backend token
// POST /api/auth/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.accounts.Login(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Register creates an account
// POST /api/auth/register
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, result)
}

// GoogleLogin forwards a Google OAuth access token to the backend
// POST /api/auth/google
func (h *AccountHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.GoogleLoginRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.accounts.GoogleLogin(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, result)
}

// Logout drops the caller's cached workspace
// POST /api/auth/logout
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	h.sessions.Drop(userID)
	h.logger.Info("user logged out", "user_id", userID)
	w.WriteHeader(http.StatusNoContent)
}
