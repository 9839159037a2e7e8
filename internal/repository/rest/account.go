package rest

import (
	"context"
	"fmt"

	"imgtree/internal/domain/models"
)

type userDTO struct {
	ID       flexID `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

// authDTO covers {token, user}, {access, user} and a bare user object.
type authDTO struct {
	Token  string   `json:"token"`
	Access string   `json:"access"`
	User   *userDTO `json:"user"`
	userDTO
}

func (d authDTO) toModel() *models.AuthResult {
	token := d.Token
	if token == "" {
		token = d.Access
	}
	u := d.userDTO
	if d.User != nil {
		u = *d.User
	}
	return &models.AuthResult{
		Token: token,
		User: models.User{
			ID:       string(u.ID),
			Username: u.Username,
			Name:     u.Name,
			Email:    u.Email,
		},
	}
}

// Login exchanges email and password for a token
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	return c.authenticate(ctx, "login", "/login", map[string]string{
		"email":    email,
		"password": password,
	})
}

// Register creates an account
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResult, error) {
	return c.authenticate(ctx, "register", "/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
}

// GoogleLogin exchanges a Google OAuth access token for a backend session
func (c *Client) GoogleLogin(ctx context.Context, accessToken string) (*models.AuthResult, error) {
	return c.authenticate(ctx, "google login", "/auth/gg_login/", map[string]string{
		"access_token": accessToken,
	})
}

func (c *Client) authenticate(ctx context.Context, op, path string, body map[string]string) (*models.AuthResult, error) {
	resp, err := c.request(ctx, nil).SetBody(body).Post(path)
	if err := checkResponse(op, resp, err); err != nil {
		return nil, err
	}

	var dto authDTO
	if _, err := decodeObject(resp.Body(), &dto); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result := dto.toModel()
	c.logger.Debug("backend authentication succeeded", "op", op, "user_id", result.User.ID)
	return result, nil
}
