package mediakit

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrUnsupportedMediaType indicates the selected file is neither an image
	// nor a video. Commit rejects it before any remote call.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrVideoStoreNotConfigured indicates a video commit was requested but no
	// video store was wired into the service.
	ErrVideoStoreNotConfigured = errors.New("video store not configured")

	// ErrPermissionDenied indicates the Document API rejected the caller
	// (HTTP 403). Surfaced as "Access Denied" rather than a generic failure.
	ErrPermissionDenied = errors.New("access denied")

	// ErrAssetNotFound indicates a ledger asset was not found.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrEmptyConversion indicates the transcoder reported success but
	// returned no renditions. Treated like a conversion failure.
	ErrEmptyConversion = errors.New("conversion returned no renditions")

	// ErrTranscoderNotConfigured indicates no transcoder was wired into the
	// service. Video commits fall back to the raw upload with a warning.
	ErrTranscoderNotConfigured = errors.New("transcoder not configured")
)

// RemoteError represents a failed call to one of the remote services
// (file storage, video storage, transcoder, Document API).
type RemoteError struct {
	Service string
	Op      string
	Key     string
	Status  int
	Err     error
}

func (e *RemoteError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Service, e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Service, e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// CommitError represents a fatal failure of a media commit: the primary
// upload or update of the selected file could not complete.
type CommitError struct {
	Stage string
	Form  MediaForm
	Err   error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("media commit %s failed for %s: %v", e.Stage, e.Form, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
