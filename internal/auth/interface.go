package auth

import "imgtree/internal/domain/models"

// TokenVerifier turns a bearer token into claims.
// The backend stays the authority on every call the gateway forwards, so a
// verifier only decides who the caller claims to be.
type TokenVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns domain.ErrUnauthorized if the token is unusable.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier.
	Close() error
}
