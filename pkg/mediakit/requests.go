package mediakit

import "io"

// Request/Response DTOs

// FileUpload is the user-selected file of one form submission.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.Reader
}

// CommitRequest contains the parameters of one media commit: the selected
// file (or none), the URL the document pointed at before this save, and the
// call-site chunk divisor for segment counting.
type CommitRequest struct {
	// File is the selected file. Nil means no file was chosen and ManualURL
	// passes through unchanged, with no remote calls.
	File *FileUpload

	// ManualURL is a manually entered URL, used only when File is nil.
	ManualURL string

	// PreviousURL is the asset the document pointed at before this save.
	PreviousURL string

	// Editing is true when an existing document is being updated rather than
	// created. Only updates reuse storage slots and delete superseded assets.
	Editing bool

	// ChunkSize is the divisor for the HLS segment count. Zero means
	// DefaultChunkSize. Ad uploads pass AdChunkSize, message uploads
	// MessageChunkSize.
	ChunkSize int64

	// Document optionally tags ledger records with the owning document
	// (e.g. "ads/65f...").
	Document string
}

// CommitResult is the outcome of a successful media commit.
type CommitResult struct {
	// URL is the single value to persist on the document.
	URL string `json:"url"`

	// Form identifies the backing asset behind URL. Nil when URL is a
	// pass-through manual URL not backed by our storage.
	Form *MediaForm `json:"form,omitempty"`

	// Converted is true when the final URL points at an HLS package.
	Converted bool `json:"converted"`

	// Warnings lists the non-fatal failures of the commit: failed conversion,
	// failed best-effort deletes. The save still succeeded.
	Warnings []CleanupWarning `json:"warnings,omitempty"`

	// compensations are the inverse actions for everything this commit
	// created, in creation order. Rollback unwinds them when the document
	// save fails after the commit.
	compensations compensationStack

	// deferred are superseded assets whose deletion waits for Finalize,
	// after the document save confirms the new URL is persisted.
	deferred []MediaForm

	// removedPaths tracks paths this commit already deleted (or handed to
	// the leak sweep), so a superseded-previous delete never touches the
	// same path twice.
	removedPaths map[string]bool
}

// noteRemoved marks a path as already handled by this commit.
func (r *CommitResult) noteRemoved(path string) {
	if r.removedPaths == nil {
		r.removedPaths = make(map[string]bool)
	}
	r.removedPaths[path] = true
}
