package httpapi

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// FileClient talks to the image storage service.
type FileClient struct {
	c *client
}

// NewFileClient creates a client for the image storage service.
func NewFileClient(cfg Config) (*FileClient, error) {
	c, err := newClient(cfg, "file storage")
	if err != nil {
		return nil, err
	}
	return &FileClient{c: c}, nil
}

// Upload creates a new storage slot and returns its filename.
func (f *FileClient) Upload(ctx context.Context, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	body, contentType, err := multipartBody(r, opts.FileName)
	if err != nil {
		return "", f.c.remoteErr("upload", opts.FileName, 0, err)
	}
	resp, err := f.c.send(ctx, "POST", "/upload", "upload", opts.FileName, body, contentType)
	if err != nil {
		return "", err
	}
	return decodeFilename(resp, "upload", f.c)
}

// Update replaces the content of an existing slot and returns its filename.
func (f *FileClient) Update(ctx context.Context, fileName string, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	body, contentType, err := multipartBody(r, opts.FileName)
	if err != nil {
		return "", f.c.remoteErr("update", fileName, 0, err)
	}
	resp, err := f.c.send(ctx, "PUT", "/file/"+escapeName(fileName), "update", fileName, body, contentType)
	if err != nil {
		return "", err
	}
	return decodeFilename(resp, "update", f.c)
}

// Delete removes a slot.
func (f *FileClient) Delete(ctx context.Context, fileName string) error {
	resp, err := f.c.send(ctx, "DELETE", "/file/"+escapeName(fileName), "delete", fileName, nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// escapeName makes a stored filename safe for a path segment. Leading
// slashes are stripped: the services address slots by bare name.
func escapeName(name string) string {
	name = strings.TrimPrefix(name, "/")
	return url.PathEscape(name)
}

var _ mediakit.FileStore = (*FileClient)(nil)
