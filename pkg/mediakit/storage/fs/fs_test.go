package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iptvkit/mediakit/pkg/mediakit"
	"github.com/iptvkit/mediakit/pkg/mediakit/storage/fs"
	"github.com/iptvkit/mediakit/pkg/mediakit/urlstrategy"
)

func newBackend(t *testing.T) (*fs.Backend, string) {
	t.Helper()
	dir := t.TempDir()
	backend, err := fs.New(fs.Config{
		BaseDir:     dir,
		URLStrategy: urlstrategy.NewCDN("https://media.example.com"),
		KeyPrefix:   "/videos/",
	})
	require.NoError(t, err)
	return backend, dir
}

func TestBackend_UploadGeneratesName(t *testing.T) {
	backend, dir := newBackend(t)
	ctx := context.Background()

	name, err := backend.Upload(ctx, strings.NewReader("frame data"), mediakit.UploadOptions{
		FileName: "movie.mp4",
		MimeType: "video/mp4",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "/videos/"))
	assert.True(t, strings.HasSuffix(name, ".mp4"))

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(name, "/")))
	require.NoError(t, err)
	assert.Equal(t, "frame data", string(data))
}

func TestBackend_UpdateKeepsName(t *testing.T) {
	backend, dir := newBackend(t)
	ctx := context.Background()

	name, err := backend.Upload(ctx, strings.NewReader("v1"), mediakit.UploadOptions{FileName: "movie.mp4"})
	require.NoError(t, err)

	updated, err := backend.Update(ctx, name, strings.NewReader("v2"), mediakit.UploadOptions{FileName: "other.mp4"})
	require.NoError(t, err)
	assert.Equal(t, name, updated)

	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(name, "/")))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data))
}

func TestBackend_UpdateMissingFails(t *testing.T) {
	backend, _ := newBackend(t)
	_, err := backend.Update(context.Background(), "/videos/missing.mp4", strings.NewReader("x"), mediakit.UploadOptions{})
	assert.Error(t, err)
}

func TestBackend_Delete(t *testing.T) {
	backend, dir := newBackend(t)
	ctx := context.Background()

	name, err := backend.Upload(ctx, strings.NewReader("data"), mediakit.UploadOptions{FileName: "a.jpg"})
	require.NoError(t, err)
	require.NoError(t, backend.Delete(ctx, name))

	_, statErr := os.Stat(filepath.Join(dir, strings.TrimPrefix(name, "/")))
	assert.True(t, os.IsNotExist(statErr))

	assert.Error(t, backend.Delete(ctx, name))
}

func TestBackend_DeleteRendition(t *testing.T) {
	backend, dir := newBackend(t)
	ctx := context.Background()

	hlsDir := filepath.Join(dir, "hls", "movie1")
	require.NoError(t, os.MkdirAll(hlsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(hlsDir, "movie1.m3u8"), []byte("#EXTM3U"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(hlsDir, "seg0.ts"), []byte("ts"), 0644))

	require.NoError(t, backend.DeleteRendition(ctx, "movie1"))

	_, statErr := os.Stat(hlsDir)
	assert.True(t, os.IsNotExist(statErr))

	assert.Error(t, backend.DeleteRendition(ctx, "movie1"))
	assert.Error(t, backend.DeleteRendition(ctx, "../etc"))
}

func TestBackend_SourceURL(t *testing.T) {
	backend, _ := newBackend(t)
	assert.Equal(t, "https://media.example.com/videos/raw.mp4", backend.SourceURL("/videos/raw.mp4"))
}

func TestBackend_SourceURLWithoutStrategy(t *testing.T) {
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "/videos/raw.mp4", backend.SourceURL("videos/raw.mp4"))
}

func TestNew_RequiresBaseDir(t *testing.T) {
	_, err := fs.New(fs.Config{})
	assert.Error(t, err)
}
