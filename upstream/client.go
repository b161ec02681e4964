// Package upstream wraps the remote academic API. The API owns all
// persistence, business rules and authorization enforcement; this client only
// shapes requests, injects the bearer credential and maps error responses.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/unipress/portal/core"
)

var (
	// ErrUnauthorized means the upstream rejected the credential; callers must
	// treat it as a forced logout.
	ErrUnauthorized = errors.New("upstream: credential rejected")
	ErrForbidden    = errors.New("upstream: permission denied")
	ErrNotFound     = errors.New("upstream: not found")
)

// APIError carries an upstream 4xx/5xx payload the gateway passes through.
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: %d %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(conf.Upstream.BaseURL, "/"),
		client:  &http.Client{Timeout: conf.Upstream.Timeout},
	}
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "marshalling request body")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setAuth(req, token)

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling upstream")
	}
	defer func() { _ = res.Body.Close() }()

	return decode(res, out)
}

// doRaw forwards an already-encoded body (multipart uploads) untouched.
func (c *Client) doRaw(ctx context.Context, method, path, token, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "building request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	setAuth(req, token)

	res, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling upstream")
	}
	defer func() { _ = res.Body.Close() }()

	return decode(res, out)
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func decode(res *http.Response, out interface{}) error {
	if res.StatusCode >= http.StatusBadRequest {
		switch res.StatusCode {
		case http.StatusUnauthorized:
			return ErrUnauthorized
		case http.StatusForbidden:
			return ErrForbidden
		case http.StatusNotFound:
			return ErrNotFound
		}
		apiErr := &APIError{StatusCode: res.StatusCode}
		if err := json.NewDecoder(res.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(res.StatusCode)
		}
		return apiErr
	}

	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decoding upstream response")
	}
	return nil
}
