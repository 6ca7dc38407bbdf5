// Package docstore provides the client for the external Document API that
// holds dashboard documents (ads, messages, channel metadata).
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// Config options for the document client.
type Config struct {
	// BaseURL is the root of the Document API.
	BaseURL string
	// Database is the database name used in request paths.
	Database string
	// Token is the bearer token sent with every request.
	Token string
	// HTTPClient overrides the default http.Client.
	HTTPClient *http.Client
}

// Client calls the Document API.
type Client struct {
	baseURL  string
	database string
	token    string
	hc       *http.Client
}

// New creates a document client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if cfg.Database == "" {
		return nil, errors.New("database name is required")
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		database: cfg.Database,
		token:    cfg.Token,
		hc:       hc,
	}, nil
}

// Document is a raw document: the API is schemaless, fields vary per collection.
type Document map[string]interface{}

// ListQuery selects documents from a collection. Field names follow the
// Document API wire format.
type ListQuery struct {
	Collection string                 `json:"collectionId"`
	Database   string                 `json:"databaseId"`
	Limit      int                    `json:"limit,omitempty"`
	Offset     int                    `json:"offset,omitempty"`
	Filter     map[string]interface{} `json:"filter-fields,omitempty"`
	Sort       map[string]int         `json:"$sort,omitempty"`
}

// ListResult is a page of documents.
type ListResult struct {
	Documents []Document `json:"documents"`
	Total     int        `json:"total"`
}

func (c *Client) docPath(collection, id string) string {
	return fmt.Sprintf("%s/api/databases/%s/%s/%s",
		c.baseURL, url.PathEscape(c.database), url.PathEscape(collection), url.PathEscape(id))
}

// Get fetches one document.
func (c *Client) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	if err := c.do(ctx, http.MethodGet, c.docPath(collection, id), nil, &doc, "get"); err != nil {
		return nil, err
	}
	return doc, nil
}

// Update replaces the document's fields with the given ones.
func (c *Client) Update(ctx context.Context, collection, id string, doc Document) error {
	return c.do(ctx, http.MethodPut, c.docPath(collection, id), doc, nil, "update")
}

// Create inserts a new document and returns it as stored.
func (c *Client) Create(ctx context.Context, collection string, doc Document) (Document, error) {
	var out Document
	path := fmt.Sprintf("%s/api/databases/%s/%s",
		c.baseURL, url.PathEscape(c.database), url.PathEscape(collection))
	if err := c.do(ctx, http.MethodPost, path, doc, &out, "create"); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a document.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	return c.do(ctx, http.MethodDelete, c.docPath(collection, id), nil, nil, "delete")
}

// List runs a filtered, sorted, paginated query over a collection.
func (c *Client) List(ctx context.Context, q ListQuery) (*ListResult, error) {
	if q.Database == "" {
		q.Database = c.database
	}
	var out ListResult
	path := c.baseURL + "/api/databases/list-documents"
	if err := c.do(ctx, http.MethodPost, path, q, &out, "list"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, rawURL string, in, out interface{}, op string) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &mediakit.RemoteError{Service: "document api", Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return &mediakit.RemoteError{
			Service: "document api",
			Op:      op,
			Status:  resp.StatusCode,
			Err:     mediakit.ErrPermissionDenied,
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &mediakit.RemoteError{
			Service: "document api",
			Op:      op,
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &mediakit.RemoteError{Service: "document api", Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
