package models

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the explicit identity passed into every operation that talks to
// the backend. It replaces reading the current user and token from ambient storage.
type Session struct {
	UserID string `json:"user_id" toml:"user_id"`
	Token  string `json:"-" toml:"token"`
	Email  string `json:"email,omitempty" toml:"email"`
}

// Valid reports whether the session can be used for backend calls.
func (s Session) Valid() bool {
	return s.UserID != "" && s.Token != ""
}

// Claims is the subset of the backend-issued JWT the gateway reads.
type Claims struct {
	jwt.RegisteredClaims        // sub, exp, iat, ...
	UserID               any    `json:"user_id,omitempty"` // some backends put the id here, number or string
	Email                string `json:"email,omitempty"`
	Role                 string `json:"role,omitempty"`
}

// GetUserID prefers an explicit user_id claim and falls back to sub.
func (c *Claims) GetUserID() string {
	switch v := c.UserID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return c.Subject
}

// AuthResult is what the backend returns on login.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// User is the backend's account record.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}
