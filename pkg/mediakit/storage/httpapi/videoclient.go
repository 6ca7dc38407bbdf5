package httpapi

import (
	"context"
	"io"
	"strings"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// VideoClient talks to the video storage service: raw uploads under the
// /videos/ namespace and HLS package deletion under /hls/{name}.
type VideoClient struct {
	c *client
}

// NewVideoClient creates a client for the video storage service.
func NewVideoClient(cfg Config) (*VideoClient, error) {
	c, err := newClient(cfg, "video storage")
	if err != nil {
		return nil, err
	}
	return &VideoClient{c: c}, nil
}

// Upload stores a new raw video and returns its path.
func (v *VideoClient) Upload(ctx context.Context, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	body, contentType, err := multipartBody(r, opts.FileName)
	if err != nil {
		return "", v.c.remoteErr("upload", opts.FileName, 0, err)
	}
	resp, err := v.c.send(ctx, "POST", "/videos/upload", "upload", opts.FileName, body, contentType)
	if err != nil {
		return "", err
	}
	return decodeFilename(resp, "upload", v.c)
}

// Update replaces an existing raw video and returns its path.
func (v *VideoClient) Update(ctx context.Context, fileName string, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	body, contentType, err := multipartBody(r, opts.FileName)
	if err != nil {
		return "", v.c.remoteErr("update", fileName, 0, err)
	}
	resp, err := v.c.send(ctx, "PUT", "/videos/"+videoName(fileName), "update", fileName, body, contentType)
	if err != nil {
		return "", err
	}
	return decodeFilename(resp, "update", v.c)
}

// Delete removes a raw video.
func (v *VideoClient) Delete(ctx context.Context, fileName string) error {
	resp, err := v.c.send(ctx, "DELETE", "/videos/"+videoName(fileName), "delete", fileName, nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// DeleteRendition removes an HLS package (manifest plus all segments).
func (v *VideoClient) DeleteRendition(ctx context.Context, name string) error {
	resp, err := v.c.send(ctx, "DELETE", "/hls/"+escapeName(name), "delete_rendition", name, nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// SourceURL returns the absolute URL of a stored raw video, the form the
// transcoder reads its source from.
func (v *VideoClient) SourceURL(fileName string) string {
	return v.c.baseURL + "/" + strings.TrimPrefix(fileName, "/")
}

// videoName normalizes a stored video path to the bare name the service's
// /videos/ endpoints address it by.
func videoName(fileName string) string {
	name := strings.TrimPrefix(fileName, "/")
	name = strings.TrimPrefix(name, "videos/")
	return escapeName(name)
}

var _ mediakit.VideoStore = (*VideoClient)(nil)
