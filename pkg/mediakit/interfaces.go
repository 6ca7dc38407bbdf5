package mediakit

import (
	"context"
	"io"
)

// FileStore is the slot-oriented remote store for raw assets. Upload creates
// a new slot and returns its path; Update reuses an existing slot and returns
// the (possibly changed) path; Delete removes a slot.
type FileStore interface {
	Upload(ctx context.Context, r io.Reader, opts UploadOptions) (string, error)
	Update(ctx context.Context, fileName string, r io.Reader, opts UploadOptions) (string, error)
	Delete(ctx context.Context, fileName string) error
}

// VideoStore extends FileStore with the video-specific surface: deleting a
// whole HLS package and producing the absolute URL the transcoder reads the
// raw source from.
type VideoStore interface {
	FileStore

	// DeleteRendition removes an HLS package (manifest plus all segments) by
	// package name.
	DeleteRendition(ctx context.Context, name string) error

	// SourceURL returns the absolute URL of a stored raw video.
	SourceURL(fileName string) string
}

// UploadOptions carries per-upload parameters.
type UploadOptions struct {
	FileName string
	MimeType string
	Size     int64
}

// Transcoder converts a raw video into an adaptive-bitrate HLS package.
type Transcoder interface {
	ConvertToHLS(ctx context.Context, sourceURL string, segments int) (*ConversionResult, error)
}

// ConversionResult is the transcoder's output.
type ConversionResult struct {
	Renditions []Rendition
}

// Rendition is one converted output version.
type Rendition struct {
	Path string
}

// Ledger records the lifecycle of backing assets. Every write from the commit
// path is best-effort: a ledger failure never fails a commit. The ledger is
// what makes "superseded assets must eventually be deleted" more than a hope;
// leaked assets stay visible until a sweep retries their deletion.
type Ledger interface {
	RecordAsset(ctx context.Context, asset *Asset) error
	GetAssetByPath(ctx context.Context, path string) (*Asset, error)
	UpdateAssetStatus(ctx context.Context, path string, status AssetStatus) error
	ListAssets(ctx context.Context, filter AssetFilter) ([]*Asset, error)
}

// EventSink receives media lifecycle notifications.
type EventSink interface {
	MediaCommitted(ctx context.Context, result *CommitResult) error
	MediaDeleted(ctx context.Context, form MediaForm) error
	CleanupFailed(ctx context.Context, warning CleanupWarning) error
}
