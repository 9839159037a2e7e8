package account

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
	"imgtree/internal/domain/repositories"
	"imgtree/internal/domain/services"
)

const minPasswordLength = 6

type accountService struct {
	repo   repositories.AccountRepository
	logger *slog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(repo repositories.AccountRepository, logger *slog.Logger) services.AccountService {
	return &accountService{repo: repo, logger: logger}
}

func (s *accountService) Login(ctx context.Context, req *services.LoginRequest) (*models.AuthResult, error) {
	req.Email = strings.TrimSpace(req.Email)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required),
	)
	if err != nil {
		return nil, domain.NewValidation("%s", err.Error())
	}

	result, err := s.repo.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn("login failed", "email", req.Email, "error", err)
		return nil, err
	}
	if result.Token == "" {
		return nil, domain.NewUpstreamError("login", 0, "backend returned no token")
	}
	s.logger.Info("user logged in", "user_id", result.User.ID)
	return result, nil
}

func (s *accountService) Register(ctx context.Context, req *services.RegisterRequest) (*models.AuthResult, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	err := validation.ValidateStruct(req,
		validation.Field(&req.Name, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&req.Email, validation.Required, is.EmailFormat),
		validation.Field(&req.Password, validation.Required, validation.RuneLength(minPasswordLength, 0)),
	)
	if err != nil {
		return nil, domain.NewValidation("%s", err.Error())
	}

	result, err := s.repo.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", result.User.ID)
	return result, nil
}

// GoogleLogin forwards the Google access token. Some backends answer with
// the user only; the token is then empty and the caller keeps using Google's.
func (s *accountService) GoogleLogin(ctx context.Context, req *services.GoogleLoginRequest) (*models.AuthResult, error) {
	req.AccessToken = strings.TrimSpace(req.AccessToken)
	if err := validation.Validate(req.AccessToken, validation.Required); err != nil {
		return nil, domain.NewValidation("access_token: %s", err.Error())
	}

	result, err := s.repo.GoogleLogin(ctx, req.AccessToken)
	if err != nil {
		return nil, err
	}
	if result.User.ID == "" {
		return nil, domain.NewUpstreamError("google login", 0, "backend returned no user")
	}
	s.logger.Info("user logged in with google", "user_id", result.User.ID)
	return result, nil
}
