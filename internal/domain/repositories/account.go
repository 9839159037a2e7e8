package repositories

import (
	"context"

	"imgtree/internal/domain/models"
)

// AccountRepository defines the backend's unauthenticated account endpoints.
type AccountRepository interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, name, email, password string) (*models.AuthResult, error)

	// GoogleLogin exchanges a Google OAuth access token for a backend session
	GoogleLogin(ctx context.Context, accessToken string) (*models.AuthResult, error)
}
