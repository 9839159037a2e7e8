package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"imgtree/internal/domain/models"
)

// ClientConfig holds configuration for the backend client
type ClientConfig struct {
	BaseURL string        // e.g. http://127.0.0.1:8000/api
	Timeout time.Duration // per request; zero = no timeout
	Logger  *slog.Logger

	// HTTPClient overrides the transport, mainly for tests
	HTTPClient *http.Client
}

// Client talks to the external image backend over REST.
// It implements every backend repository interface.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a backend client
func NewClient(cfg *ClientConfig) *Client {
	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{http: rc, logger: logger}
}

// request starts a call; a non-nil session adds the bearer token and {uid}.
func (c *Client) request(ctx context.Context, s *models.Session) *resty.Request {
	r := c.http.R().SetContext(ctx).SetError(&apiError{})
	if s != nil {
		r.SetAuthToken(s.Token).SetPathParam("uid", s.UserID)
	}
	return r
}
