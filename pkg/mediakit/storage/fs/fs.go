// Package fs provides a filesystem implementation of the storage interfaces,
// for local development and single-host deployments.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iptvkit/mediakit/pkg/mediakit"
	"github.com/iptvkit/mediakit/pkg/mediakit/urlstrategy"
)

// Config options for the filesystem backend
type Config struct {
	BaseDir     string               // Base directory for storing files
	URLStrategy urlstrategy.Strategy // How SourceURL builds public URLs; nil serves bare paths
	KeyPrefix   string               // Optional prefix for generated file names (e.g. "/videos/")
}

// Backend is a filesystem implementation of mediakit.VideoStore. Renditions
// live under "hls/<name>/" below the base directory.
type Backend struct {
	mu        sync.Mutex
	baseDir   string
	urls      urlstrategy.Strategy
	keyPrefix string
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	urls := config.URLStrategy
	if urls == nil {
		urls = urlstrategy.Func(func(p string) string {
			return "/" + strings.TrimPrefix(p, "/")
		})
	}

	return &Backend{
		baseDir:   config.BaseDir,
		urls:      urls,
		keyPrefix: config.KeyPrefix,
	}, nil
}

// Upload stores the content under a freshly generated file name and returns it.
func (b *Backend) Upload(ctx context.Context, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	name := b.keyPrefix + uuid.New().String() + filepath.Ext(opts.FileName)
	if err := b.write(name, r); err != nil {
		return "", err
	}
	return name, nil
}

// Update overwrites an existing file in place, keeping its name.
func (b *Backend) Update(ctx context.Context, fileName string, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	if _, err := os.Stat(b.path(fileName)); os.IsNotExist(err) {
		return "", fmt.Errorf("file not found: %s", fileName)
	}
	if err := b.write(fileName, r); err != nil {
		return "", err
	}
	return fileName, nil
}

// Delete removes a file.
func (b *Backend) Delete(ctx context.Context, fileName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath := b.path(fileName)
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return errors.New("object not found")
	}
	if err := os.Remove(filePath); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// DeleteRendition removes a whole HLS package directory.
func (b *Backend) DeleteRendition(ctx context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if name == "" || strings.Contains(name, "..") {
		return fmt.Errorf("invalid rendition name: %q", name)
	}
	dir := filepath.Join(b.baseDir, "hls", name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return errors.New("rendition not found")
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete rendition: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(dir))
	return nil
}

// SourceURL returns the public URL for a stored file.
func (b *Backend) SourceURL(fileName string) string {
	return b.urls.SourceURL(fileName)
}

func (b *Backend) path(fileName string) string {
	return filepath.Join(b.baseDir, strings.TrimPrefix(fileName, "/"))
}

func (b *Backend) write(fileName string, r io.Reader) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	filePath := b.path(fileName)
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, r); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir {
		return
	}
	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}

var _ mediakit.VideoStore = (*Backend)(nil)
