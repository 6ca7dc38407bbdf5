package mediakit_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iptvkit/mediakit/pkg/mediakit"
	ledgermemory "github.com/iptvkit/mediakit/pkg/mediakit/ledger/memory"
	storagememory "github.com/iptvkit/mediakit/pkg/mediakit/storage/memory"
)

// stubTranscoder scripts the transcoder's answer for a commit.
type stubTranscoder struct {
	renditions []mediakit.Rendition
	err        error

	calls      int
	gotSource  string
	gotSegment int
}

func (t *stubTranscoder) ConvertToHLS(ctx context.Context, sourceURL string, segments int) (*mediakit.ConversionResult, error) {
	t.calls++
	t.gotSource = sourceURL
	t.gotSegment = segments
	if t.err != nil {
		return nil, t.err
	}
	return &mediakit.ConversionResult{Renditions: t.renditions}, nil
}

type fixture struct {
	svc        mediakit.Service
	files      *storagememory.Store
	videos     *storagememory.Store
	transcoder *stubTranscoder
	ledger     *ledgermemory.Ledger
}

func setup(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		files:      storagememory.New(),
		videos:     storagememory.NewWithPrefix("/videos/"),
		transcoder: &stubTranscoder{},
		ledger:     ledgermemory.New(),
	}
	for _, opt := range opts {
		opt(f)
	}

	svc, err := mediakit.New(
		mediakit.WithFileStore(f.files),
		mediakit.WithVideoStore(f.videos),
		mediakit.WithTranscoder(f.transcoder),
		mediakit.WithLedger(f.ledger),
	)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func fileOf(name, mime, content string) *mediakit.FileUpload {
	return &mediakit.FileUpload{
		Name:        name,
		ContentType: mime,
		Size:        int64(len(content)),
		Data:        strings.NewReader(content),
	}
}

func TestServiceCreation(t *testing.T) {
	t.Run("no options should fail", func(t *testing.T) {
		svc, err := mediakit.New()
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("with file store should succeed", func(t *testing.T) {
		svc, err := mediakit.New(mediakit.WithFileStore(storagememory.New()))
		assert.NoError(t, err)
		assert.NotNil(t, svc)
	})
}

func TestCommitMedia_PassThrough(t *testing.T) {
	f := setup(t)

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		ManualURL: "https://cdn.example.com/banner.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/banner.png", res.URL)
	assert.Nil(t, res.Form)
	assert.Empty(t, res.Warnings)

	// No file means no remote calls at all.
	assert.Empty(t, f.files.Ops())
	assert.Empty(t, f.videos.Ops())
	assert.Zero(t, f.transcoder.calls)
}

func TestCommitMedia_RejectsUnsupportedType(t *testing.T) {
	f := setup(t)

	_, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("notes.pdf", "application/pdf", "%PDF"),
	})
	require.ErrorIs(t, err, mediakit.ErrUnsupportedMediaType)

	// Validation happens before any network call.
	assert.Empty(t, f.files.Ops())
	assert.Empty(t, f.videos.Ops())
	assert.Zero(t, f.transcoder.calls)
}

func TestCommitMedia_ImageCreate(t *testing.T) {
	f := setup(t)

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("poster.jpg", "image/jpeg", "jpegdata"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Form)
	assert.Equal(t, mediakit.MediaKindImage, res.Form.Kind)
	assert.Equal(t, mediakit.StorageFormRaw, res.Form.Form)
	assert.True(t, f.files.Exists(res.URL))
	assert.Equal(t, 1, f.files.CountOp("upload"))
	assert.Equal(t, 0, f.files.CountOp("update"))

	asset, err := f.ledger.GetAssetByPath(context.Background(), res.URL)
	require.NoError(t, err)
	assert.Equal(t, mediakit.AssetStatusLive, asset.Status)
}

func TestCommitMedia_ImageEditReusesSlot(t *testing.T) {
	f := setup(t)
	f.files.Seed("poster-1.jpg", "image/jpeg", []byte("old"))

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("poster.jpg", "image/jpeg", "new"),
		PreviousURL: "poster-1.jpg",
		Editing:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, "poster-1.jpg", res.URL)
	assert.Equal(t, 1, f.files.CountOp("update"))
	assert.Equal(t, 0, f.files.CountOp("upload"))
	// Same slot before and after: nothing to delete.
	assert.Equal(t, 0, f.files.CountOp("delete"))

	content, ok := f.files.Content("poster-1.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), content)
}

func TestCommitMedia_ImageEditWithExternalPreviousUploadsFresh(t *testing.T) {
	f := setup(t)

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("poster.jpg", "image/jpeg", "data"),
		PreviousURL: "https://elsewhere.example.com/old.jpg",
		Editing:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.files.CountOp("upload"))
	assert.Equal(t, 0, f.files.CountOp("update"))
	// The external URL is not ours; no delete is attempted.
	assert.Equal(t, 0, f.files.CountOp("delete"))
	assert.True(t, f.files.Exists(res.URL))
}

func TestCommitMedia_UploadFailureIsFatal(t *testing.T) {
	f := setup(t, func(f *fixture) { f.files.FailUploads = true })

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("poster.jpg", "image/jpeg", "data"),
	})
	require.Error(t, err)
	assert.Nil(t, res)

	var commitErr *mediakit.CommitError
	require.ErrorAs(t, err, &commitErr)
	assert.Equal(t, "upload", commitErr.Stage)
}

func TestCommitMedia_VideoConversionSuccess(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.transcoder.renditions = []mediakit.Rendition{{Path: "/hls/show42/show42.m3u8"}}
	})
	f.videos.AddRendition("show42")

	content := strings.Repeat("x", 1024)
	upload := fileOf("show.mp4", "video/mp4", content)
	upload.Size = 120 << 20 // pretend a 120 MiB file

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:      upload,
		ChunkSize: mediakit.MessageChunkSize,
	})
	require.NoError(t, err)
	assert.Equal(t, "/hls/show42/show42.m3u8", res.URL)
	require.NotNil(t, res.Form)
	assert.True(t, res.Form.IsHLS())
	assert.True(t, res.Converted)
	assert.Empty(t, res.Warnings)

	// ceil(120/50) = 3 segments for the message flow.
	assert.Equal(t, 3, f.transcoder.gotSegment)
	assert.Contains(t, f.transcoder.gotSource, "memory://store/videos/")

	// The raw upload was deleted exactly once.
	assert.Equal(t, 1, f.videos.CountOp("delete"))
}

func TestCommitMedia_VideoConversionFailureFallsBackToRaw(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.transcoder.err = errors.New("transcoder unavailable")
	})

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("show.mp4", "video/mp4", "mp4data"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Form)
	assert.Equal(t, mediakit.StorageFormRaw, res.Form.Form)
	assert.Equal(t, mediakit.MediaKindVideo, res.Form.Kind)
	assert.False(t, res.Converted)
	assert.True(t, f.videos.Exists(res.URL))

	// The raw upload is never deleted on conversion failure.
	assert.Equal(t, 0, f.videos.CountOp("delete"))

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "convert", res.Warnings[0].Op)
}

func TestCommitMedia_VideoEmptyConversionFallsBackToRaw(t *testing.T) {
	f := setup(t) // stub returns no renditions

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("show.mp4", "video/mp4", "mp4data"),
	})
	require.NoError(t, err)
	assert.False(t, res.Converted)
	assert.Equal(t, 0, f.videos.CountOp("delete"))
	require.Len(t, res.Warnings, 1)
	assert.ErrorIs(t, res.Warnings[0].Err, mediakit.ErrEmptyConversion)
}

func TestCommitMedia_RawDeleteFailureAfterConversionIsWarning(t *testing.T) {
	f2 := setup(t, func(f *fixture) {
		f.transcoder.renditions = []mediakit.Rendition{{Path: "/hls/show1/show1.m3u8"}}
		f.videos.FailDeletes = true
	})

	res2, err := f2.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("show.mp4", "video/mp4", "mp4data"),
	})
	require.NoError(t, err)
	assert.True(t, res2.Converted)
	assert.Equal(t, "/hls/show1/show1.m3u8", res2.URL)
	require.Len(t, res2.Warnings, 1)
	assert.Equal(t, "delete_raw_after_convert", res2.Warnings[0].Op)

	// The leaked raw upload is registered for a later sweep.
	leaked, err := f2.ledger.GetAssetByPath(context.Background(), res2.Warnings[0].Form.Path)
	require.NoError(t, err)
	assert.Equal(t, mediakit.AssetStatusLeaked, leaked.Status)
}

func TestCommitMedia_PreviousHLSDeletedViaRenditionEndpoint(t *testing.T) {
	// Editing an ad whose existing URL is an HLS package while uploading a
	// new image: the old package goes through the rendition delete, not the
	// image delete.
	f := setup(t)
	f.videos.AddRendition("movie1")

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("banner.png", "image/png", "pngdata"),
		PreviousURL: "/hls/movie1/movie1.m3u8",
		Editing:     true,
	})
	require.NoError(t, err)
	assert.True(t, f.files.Exists(res.URL))

	// The old package survives until the save is confirmed.
	assert.True(t, f.videos.RenditionExists("movie1"))
	assert.Empty(t, f.svc.Finalize(context.Background(), res))

	assert.Equal(t, 1, f.videos.CountOp("delete_rendition"))
	assert.Equal(t, 0, f.files.CountOp("delete"))
	assert.False(t, f.videos.RenditionExists("movie1"))
}

func TestCommitMedia_PreviousRawVideoDeletedViaVideoStore(t *testing.T) {
	f := setup(t)
	f.videos.Seed("/videos/old.mp4", "video/mp4", []byte("old"))

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("banner.png", "image/png", "pngdata"),
		PreviousURL: "/videos/old.mp4",
		Editing:     true,
	})
	require.NoError(t, err)
	assert.Empty(t, f.svc.Finalize(context.Background(), res))
	assert.Equal(t, 1, f.videos.CountOp("delete"))
	assert.False(t, f.videos.Exists("/videos/old.mp4"))
}

func TestCommitMedia_PreviousDeleteFailureIsNonFatal(t *testing.T) {
	f := setup(t, func(f *fixture) { f.files.FailDeletes = true })
	f.files.Seed("old.jpg", "image/jpeg", []byte("old"))

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("new.png", "image/png", "pngdata"),
		PreviousURL: "old.jpg",
		Editing:     true,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	warnings := f.svc.Finalize(context.Background(), res)
	require.Len(t, warnings, 1)
	assert.Equal(t, "delete_previous", warnings[0].Op)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "delete_previous", res.Warnings[0].Op)
}

func TestCommitMedia_VideoEditConversionDeletesRawOnce(t *testing.T) {
	// Editing a raw video in place while the conversion succeeds: the reused
	// slot is the superseded asset AND the raw upload removed after the
	// conversion. It must be deleted exactly once.
	f := setup(t, func(f *fixture) {
		f.transcoder.renditions = []mediakit.Rendition{{Path: "/hls/show9/show9.m3u8"}}
	})
	f.videos.AddRendition("show9")
	f.videos.Seed("/videos/show9.mp4", "video/mp4", []byte("old"))

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("show9.mp4", "video/mp4", "mp4data"),
		PreviousURL: "/videos/show9.mp4",
		Editing:     true,
	})
	require.NoError(t, err)
	assert.True(t, res.Converted)
	assert.Equal(t, "/hls/show9/show9.m3u8", res.URL)
	assert.Empty(t, res.Warnings)
	assert.Empty(t, f.svc.Finalize(context.Background(), res))
	assert.Empty(t, res.Warnings)

	// One in-place update, one raw delete, and nothing else.
	assert.Equal(t, []string{"update", "delete"}, f.videos.Ops())
	assert.False(t, f.videos.Exists("/videos/show9.mp4"))

	// The ledger agrees the raw upload is gone, so no sweep will retry it.
	asset, err := f.ledger.GetAssetByPath(context.Background(), "/videos/show9.mp4")
	require.NoError(t, err)
	assert.Equal(t, mediakit.AssetStatusDeleted, asset.Status)

	removed, warnings, err := f.svc.SweepLeaked(context.Background(), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, warnings)
}

func TestRollback_UnwindsFreshUploads(t *testing.T) {
	f := setup(t, func(f *fixture) {
		f.transcoder.renditions = []mediakit.Rendition{{Path: "/hls/ep7/ep7.m3u8"}}
	})
	f.videos.AddRendition("ep7")

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("ep7.mp4", "video/mp4", "mp4data"),
	})
	require.NoError(t, err)
	require.True(t, res.Converted)

	// Document save failed; unwind. The HLS package goes; the raw upload was
	// already removed by the commit itself.
	warnings := f.svc.Rollback(context.Background(), res)
	assert.Empty(t, warnings)
	assert.False(t, f.videos.RenditionExists("ep7"))
	assert.Equal(t, 1, f.videos.CountOp("delete"))
	assert.Equal(t, 1, f.videos.CountOp("delete_rendition"))
}

func TestRollback_DoesNotTouchReusedSlots(t *testing.T) {
	f := setup(t)
	f.files.Seed("poster-1.jpg", "image/jpeg", []byte("old"))

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("poster.jpg", "image/jpeg", "new"),
		PreviousURL: "poster-1.jpg",
		Editing:     true,
	})
	require.NoError(t, err)

	warnings := f.svc.Rollback(context.Background(), res)
	assert.Empty(t, warnings)
	// The reused slot must survive: the document still points at it.
	assert.True(t, f.files.Exists("poster-1.jpg"))
	assert.Equal(t, 0, f.files.CountOp("delete"))
}

func TestRollback_KeepsPreviousAsset(t *testing.T) {
	f := setup(t)
	f.videos.AddRendition("movie2")

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("banner.png", "image/png", "pngdata"),
		PreviousURL: "/hls/movie2/movie2.m3u8",
		Editing:     true,
	})
	require.NoError(t, err)

	warnings := f.svc.Rollback(context.Background(), res)
	assert.Empty(t, warnings)
	// The fresh upload is unwound, but the old package survives: the document
	// still points at it after the failed save.
	assert.Equal(t, 1, f.files.CountOp("delete"))
	assert.True(t, f.videos.RenditionExists("movie2"))
	assert.Equal(t, 0, f.videos.CountOp("delete_rendition"))

	// Rollback dropped the deferred cleanup, so a stray Finalize is a no-op.
	assert.Empty(t, f.svc.Finalize(context.Background(), res))
	assert.True(t, f.videos.RenditionExists("movie2"))
}

func TestRollback_FailuresAreWarnings(t *testing.T) {
	f := setup(t)

	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("poster.jpg", "image/jpeg", "data"),
	})
	require.NoError(t, err)

	f.files.FailDeletes = true
	warnings := f.svc.Rollback(context.Background(), res)
	require.Len(t, warnings, 1)
	assert.Equal(t, "rollback", warnings[0].Op)
}

func TestSweepLeaked(t *testing.T) {
	f := setup(t, func(f *fixture) { f.files.FailDeletes = true })
	f.files.Seed("old.jpg", "image/jpeg", []byte("old"))

	// A failed best-effort delete leaves a leaked ledger entry behind.
	res, err := f.svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File:        fileOf("new.png", "image/png", "pngdata"),
		PreviousURL: "old.jpg",
		Editing:     true,
	})
	require.NoError(t, err)
	require.Len(t, f.svc.Finalize(context.Background(), res), 1)

	f.files.FailDeletes = false
	removed, warnings, err := f.svc.SweepLeaked(context.Background(), time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, 1, removed)
	assert.False(t, f.files.Exists("old.jpg"))

	asset, err := f.ledger.GetAssetByPath(context.Background(), "old.jpg")
	require.NoError(t, err)
	assert.Equal(t, mediakit.AssetStatusDeleted, asset.Status)
}

func TestCommitMedia_VideoWithoutVideoStoreFails(t *testing.T) {
	svc, err := mediakit.New(mediakit.WithFileStore(storagememory.New()))
	require.NoError(t, err)

	_, err = svc.CommitMedia(context.Background(), mediakit.CommitRequest{
		File: fileOf("show.mp4", "video/mp4", "mp4data"),
	})
	assert.ErrorIs(t, err, mediakit.ErrVideoStoreNotConfigured)
}
