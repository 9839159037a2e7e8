package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"imgtree/internal/domain"
)

// apiError covers the error bodies the backend is known to send:
// {"message": ...}, {"detail": ...} and {"error": ...}.
type apiError struct {
	Message string `json:"message"`
	Detail  any    `json:"detail"`
	Err     string `json:"error"`
}

func (e *apiError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != "":
		return e.Err
	}
	switch d := e.Detail.(type) {
	case string:
		return d
	case nil:
		return ""
	default:
		return fmt.Sprint(d)
	}
}

const maxErrorBody = 200

// checkResponse turns a transport failure or non-2xx answer into an UpstreamError.
// Context cancellation is returned as-is so callers can tell it apart.
func checkResponse(op string, resp *resty.Response, err error) error {
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, err)
		}
		// a body that failed to decode still carries the status it came with
		if resp != nil && resp.RawResponse != nil && !resp.IsSuccess() {
			return domain.NewUpstreamError(op, resp.StatusCode(), err.Error())
		}
		return domain.NewUpstreamError(op, 0, err.Error())
	}
	if resp.IsSuccess() {
		return nil
	}
	return domain.NewUpstreamError(op, resp.StatusCode(), errorMessage(resp))
}

func errorMessage(resp *resty.Response) string {
	if e, ok := resp.Error().(*apiError); ok {
		if msg := e.text(); msg != "" {
			return msg
		}
	}
	body := strings.TrimSpace(resp.String())
	if body == "" {
		return http.StatusText(resp.StatusCode())
	}
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return body
}
