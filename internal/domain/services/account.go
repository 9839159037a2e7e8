package services

import (
	"context"

	"imgtree/internal/domain/models"
)

// AccountService validates credentials and forwards them to the backend.
type AccountService interface {
	Login(ctx context.Context, req *LoginRequest) (*models.AuthResult, error)
	Register(ctx context.Context, req *RegisterRequest) (*models.AuthResult, error)
	GoogleLogin(ctx context.Context, req *GoogleLoginRequest) (*models.AuthResult, error)
}

// LoginRequest represents an email/password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents an account registration
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleLoginRequest carries a Google OAuth access token
type GoogleLoginRequest struct {
	AccessToken string `json:"access_token"`
}
