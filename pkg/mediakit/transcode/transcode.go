// Package transcode provides the client for the remote transcoder service
// that converts raw videos into HLS packages.
package transcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// Config options for the transcoder client.
type Config struct {
	// BaseURL is the root of the transcoder service.
	BaseURL string
	// Token is the bearer token sent with every request.
	Token string
	// HTTPClient overrides the default http.Client. No default timeout is
	// set: conversions are long-running and bounded by the request context.
	HTTPClient *http.Client
}

// Client calls the transcoder's convertVideoToM3U8 endpoint.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

// New creates a transcoder client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		hc:      hc,
	}, nil
}

type convertRequest struct {
	URL      string `json:"url"`
	Segments int    `json:"segments"`
}

type convertResponse struct {
	Status  string `json:"status"`
	Payload struct {
		VideoVersions []struct {
			Path string `json:"path"`
		} `json:"videoVersions"`
	} `json:"payload"`
}

// ConvertToHLS asks the transcoder to convert the raw video at sourceURL
// into an HLS package with the given segment count.
func (c *Client) ConvertToHLS(ctx context.Context, sourceURL string, segments int) (*mediakit.ConversionResult, error) {
	body, err := json.Marshal(convertRequest{URL: sourceURL, Segments: segments})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/convertVideoToM3U8", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, &mediakit.RemoteError{Service: "transcoder", Op: "convert", Key: sourceURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &mediakit.RemoteError{
			Service: "transcoder",
			Op:      "convert",
			Key:     sourceURL,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}

	var out convertResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &mediakit.RemoteError{Service: "transcoder", Op: "convert", Key: sourceURL, Err: fmt.Errorf("decode response: %w", err)}
	}

	result := &mediakit.ConversionResult{}
	for _, v := range out.Payload.VideoVersions {
		if v.Path == "" {
			continue
		}
		result.Renditions = append(result.Renditions, mediakit.Rendition{Path: v.Path})
	}
	return result, nil
}

var _ mediakit.Transcoder = (*Client)(nil)
