// Package drive reads the user's Google Drive for the picker import.
package drive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"imgtree/internal/config"
	"imgtree/internal/domain"
	"imgtree/internal/domain/models"
)

const (
	imageQuery = "mimeType contains 'image/' and trashed = false"
	listFields = "files(id,name,mimeType,thumbnailLink,webContentLink,size)"
)

// ClientConfig holds configuration for the Drive client
type ClientConfig struct {
	BaseURL    string // https://www.googleapis.com/drive/v3
	Timeout    time.Duration
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Client is a minimal Drive v3 client. The OAuth access token is passed per
// call; the client holds no credentials.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient creates a Drive client
func NewClient(cfg *ClientConfig) *Client {
	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{http: rc, logger: logger}
}

type fileList struct {
	Files []models.PickedFile `json:"files"`
}

type driveError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ListImages returns up to pageSize non-trashed images from the user's Drive
func (c *Client) ListImages(ctx context.Context, accessToken string, pageSize int) ([]models.PickedFile, error) {
	if accessToken == "" {
		return nil, &domain.UnauthorizedError{Message: "drive access token required"}
	}
	if pageSize <= 0 {
		pageSize = config.DefaultPickerPageSize
	}
	if pageSize > config.MaxPickerPageSize {
		pageSize = config.MaxPickerPageSize
	}

	var out fileList
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"q":        imageQuery,
			"fields":   listFields,
			"pageSize": strconv.Itoa(pageSize),
		}).
		SetResult(&out).
		SetError(&driveError{}).
		Get("/files")
	if err != nil {
		return nil, domain.NewUpstreamError("list drive images", 0, err.Error())
	}
	if !resp.IsSuccess() {
		return nil, domain.NewUpstreamError("list drive images", resp.StatusCode(), errorMessage(resp))
	}

	c.logger.Debug("listed drive images", "count", len(out.Files))
	if out.Files == nil {
		out.Files = []models.PickedFile{}
	}
	return out.Files, nil
}

// Open streams the content of one Drive file. The caller must close it.
func (c *Client) Open(ctx context.Context, accessToken, fileID string) (io.ReadCloser, error) {
	if accessToken == "" {
		return nil, &domain.UnauthorizedError{Message: "drive access token required"}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetPathParam("id", fileID).
		SetQueryParam("alt", "media").
		SetDoNotParseResponse(true).
		Get("/files/{id}")
	if err != nil {
		return nil, domain.NewUpstreamError("open drive file", 0, err.Error())
	}

	body := resp.RawBody()
	if !resp.IsSuccess() {
		defer body.Close()
		msg, _ := io.ReadAll(io.LimitReader(body, 512))
		text := strings.TrimSpace(string(msg))
		if text == "" {
			text = http.StatusText(resp.StatusCode())
		}
		return nil, domain.NewUpstreamError(fmt.Sprintf("open drive file %s", fileID), resp.StatusCode(), text)
	}
	return body, nil
}

func errorMessage(resp *resty.Response) string {
	if e, ok := resp.Error().(*driveError); ok && e.Error.Message != "" {
		return e.Error.Message
	}
	if body := strings.TrimSpace(resp.String()); body != "" {
		return body
	}
	return http.StatusText(resp.StatusCode())
}
