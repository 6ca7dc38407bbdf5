// Package httpapi provides mediakit store implementations backed by the
// remote storage services of the IPTV platform: a file service for images
// (POST /upload, PUT/DELETE /file/{name}) and a video service with a
// /videos/ namespace plus HLS package deletion under /hls/{name}. Both
// authenticate with a bearer token.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// Config options for the storage service clients.
type Config struct {
	// BaseURL is the root of the storage service, e.g. "https://media.example.com".
	BaseURL string
	// Token is the bearer token sent with every request.
	Token string
	// HTTPClient overrides the default http.Client. Deliberately no default
	// timeout: uploads of large files are long-running and are bounded by the
	// request context instead.
	HTTPClient *http.Client
}

type client struct {
	baseURL string
	token   string
	hc      *http.Client
	service string
}

func newClient(cfg Config, service string) (*client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		hc:      hc,
		service: service,
	}, nil
}

// uploadResponse is the body the storage services return for upload/update.
type uploadResponse struct {
	Filename string `json:"filename"`
}

func (c *client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.hc.Do(req)
}

func (c *client) remoteErr(op, key string, status int, err error) error {
	return &mediakit.RemoteError{
		Service: c.service,
		Op:      op,
		Key:     key,
		Status:  status,
		Err:     err,
	}
}

// send performs a request and checks for a 2xx status.
func (c *client) send(ctx context.Context, method, path, op, key string, body io.Reader, contentType string) (*http.Response, error) {
	resp, err := c.do(ctx, method, path, body, contentType)
	if err != nil {
		return nil, c.remoteErr(op, key, 0, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, c.remoteErr(op, key, resp.StatusCode,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))))
	}
	return resp, nil
}

// multipartBody builds a multipart form with a single "file" field.
func multipartBody(r io.Reader, fileName string) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func decodeFilename(resp *http.Response, op string, c *client) (string, error) {
	defer resp.Body.Close()
	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", c.remoteErr(op, "", resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	if out.Filename == "" {
		return "", c.remoteErr(op, "", resp.StatusCode, errors.New("empty filename in response"))
	}
	return out.Filename, nil
}
