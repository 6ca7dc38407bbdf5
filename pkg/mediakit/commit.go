package mediakit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the media lifecycle orchestrator.
type Service interface {
	// CommitMedia uploads the selected file and optionally converts video to
	// an HLS package. It returns the single URL to persist. A superseded
	// previous asset is queued on the result for Finalize rather than
	// deleted here. Primary upload failures are fatal; conversion and
	// cleanup failures are reported as warnings on the result.
	CommitMedia(ctx context.Context, req CommitRequest) (*CommitResult, error)

	// Finalize deletes the assets the commit superseded, best-effort.
	// Callers invoke it after the document save succeeds, so a previous
	// asset is never destroyed while the document still points at it.
	// Warnings are also appended to the result.
	Finalize(ctx context.Context, result *CommitResult) []CleanupWarning

	// Rollback unwinds everything a commit created, newest first. Callers
	// invoke it when the document save fails after CommitMedia returned.
	// Failures are best-effort warnings; the original save error stays the
	// one surfaced to the user.
	Rollback(ctx context.Context, result *CommitResult) []CleanupWarning

	// DeleteMedia removes one backing asset, dispatching on its form.
	DeleteMedia(ctx context.Context, form MediaForm) CleanupResult

	// SweepLeaked retries the deletion of leaked assets recorded before the
	// cutoff. It returns the number of assets removed.
	SweepLeaked(ctx context.Context, before time.Time) (int, []CleanupWarning, error)
}

// service implements the Service interface
type service struct {
	files      FileStore
	videos     VideoStore
	transcoder Transcoder
	ledger     Ledger
	events     EventSink
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithFileStore sets the image storage client.
func WithFileStore(store FileStore) Option {
	return func(s *service) {
		s.files = store
	}
}

// WithVideoStore sets the video storage client.
func WithVideoStore(store VideoStore) Option {
	return func(s *service) {
		s.videos = store
	}
}

// WithTranscoder sets the transcoder client. Without one, video commits keep
// the raw upload and record a warning.
func WithTranscoder(t Transcoder) Option {
	return func(s *service) {
		s.transcoder = t
	}
}

// WithLedger sets the asset ledger.
func WithLedger(l Ledger) Option {
	return func(s *service) {
		s.ledger = l
	}
}

// WithEventSink sets the event sink for the service
func WithEventSink(sink EventSink) Option {
	return func(s *service) {
		s.events = sink
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.files == nil {
		return nil, fmt.Errorf("file store is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

func (s *service) CommitMedia(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	// No file selected: the manually entered URL passes through untouched.
	if req.File == nil {
		return &CommitResult{URL: req.ManualURL}, nil
	}

	var kind MediaKind
	switch {
	case strings.HasPrefix(req.File.ContentType, "image/"):
		kind = MediaKindImage
	case strings.HasPrefix(req.File.ContentType, "video/"):
		kind = MediaKindVideo
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, req.File.ContentType)
	}

	if kind == MediaKindVideo && s.videos == nil {
		return nil, ErrVideoStoreNotConfigured
	}

	prevForm, prevOwned := ParseMediaForm(req.PreviousURL)

	result := &CommitResult{}

	switch kind {
	case MediaKindImage:
		if err := s.commitImage(ctx, req, prevForm, prevOwned, result); err != nil {
			return nil, err
		}
	case MediaKindVideo:
		if err := s.commitVideo(ctx, req, prevForm, prevOwned, result); err != nil {
			return nil, err
		}
	}

	// The superseded asset is deleted by Finalize, after the document save
	// confirms the new URL. A reused or already-removed path (the raw
	// upload of a converted video can be the previous asset itself) is
	// skipped so nothing is deleted twice.
	if req.Editing && prevOwned && req.PreviousURL != result.URL && !result.removedPaths[prevForm.Path] {
		result.deferred = append(result.deferred, prevForm)
	}

	if s.events != nil {
		if err := s.events.MediaCommitted(ctx, result); err != nil {
			s.logger.Warn("media committed event failed", "error", err)
		}
	}

	return result, nil
}

// commitImage uploads the selected image, reusing the previous storage slot
// when editing a same-origin raw image.
func (s *service) commitImage(ctx context.Context, req CommitRequest, prevForm MediaForm, prevOwned bool, result *CommitResult) error {
	reuseSlot := req.Editing && prevOwned &&
		prevForm.Kind == MediaKindImage && prevForm.Form == StorageFormRaw

	opts := UploadOptions{
		FileName: req.File.Name,
		MimeType: req.File.ContentType,
		Size:     req.File.Size,
	}

	var (
		name string
		err  error
	)
	if reuseSlot {
		name, err = s.files.Update(ctx, prevForm.Path, req.File.Data, opts)
	} else {
		name, err = s.files.Upload(ctx, req.File.Data, opts)
	}
	if err != nil {
		return &CommitError{Stage: "upload", Form: RawImageForm(req.File.Name), Err: err}
	}

	form := RawImageForm(name)
	result.URL = name
	result.Form = &form
	if !reuseSlot {
		// An updated slot cannot be restored, so only fresh uploads get a
		// compensating delete.
		result.compensations.push(form)
	}
	s.recordAsset(ctx, form, req.Document)
	return nil
}

// commitVideo uploads the raw video, attempts HLS conversion, and on success
// deletes the raw upload exactly once.
func (s *service) commitVideo(ctx context.Context, req CommitRequest, prevForm MediaForm, prevOwned bool, result *CommitResult) error {
	reuseSlot := req.Editing && prevOwned &&
		prevForm.Kind == MediaKindVideo && prevForm.Form == StorageFormRaw

	opts := UploadOptions{
		FileName: req.File.Name,
		MimeType: req.File.ContentType,
		Size:     req.File.Size,
	}

	var (
		name string
		err  error
	)
	if reuseSlot {
		name, err = s.videos.Update(ctx, prevForm.Path, req.File.Data, opts)
	} else {
		name, err = s.videos.Upload(ctx, req.File.Data, opts)
	}
	if err != nil {
		return &CommitError{Stage: "upload", Form: RawVideoForm(req.File.Name), Err: err}
	}

	rawForm := RawVideoForm(name)
	result.URL = name
	result.Form = &rawForm
	if !reuseSlot {
		result.compensations.push(rawForm)
	}
	s.recordAsset(ctx, rawForm, req.Document)

	if s.transcoder == nil {
		s.warn(ctx, result, "convert", rawForm, ErrTranscoderNotConfigured)
		return nil
	}

	segments := SegmentCount(req.File.Size, req.ChunkSize)
	conv, err := s.transcoder.ConvertToHLS(ctx, s.videos.SourceURL(name), segments)
	if err == nil && (conv == nil || len(conv.Renditions) == 0) {
		err = ErrEmptyConversion
	}
	if err != nil {
		// Conversion is non-fatal: the document keeps the raw video URL and
		// the raw upload stays in place.
		s.warn(ctx, result, "convert", rawForm, err)
		return nil
	}

	hlsForm := HLSForm(conv.Renditions[0].Path)
	result.URL = hlsForm.Path
	result.Form = &hlsForm
	result.Converted = true
	result.compensations.push(hlsForm)
	s.recordAsset(ctx, hlsForm, req.Document)

	// The converted package supersedes the raw upload. Delete it exactly
	// once; on failure the raw file leaks and the warning says so.
	if cr := s.DeleteMedia(ctx, rawForm); !cr.OK() {
		s.warn(ctx, result, "delete_raw_after_convert", rawForm, cr.Err)
	} else {
		s.markDeleted(ctx, rawForm.Path)
	}
	// Whether or not the delete worked, the raw upload is no longer ours to
	// roll back: either it is gone, or the leak sweep owns it.
	result.compensations.drop(rawForm)
	result.noteRemoved(rawForm.Path)

	return nil
}

func (s *service) Finalize(ctx context.Context, result *CommitResult) []CleanupWarning {
	if result == nil {
		return nil
	}

	var warnings []CleanupWarning
	for _, form := range result.deferred {
		if cr := s.DeleteMedia(ctx, form); !cr.OK() {
			f := form
			w := CleanupWarning{Op: "delete_previous", Form: &f, Err: cr.Err}
			result.Warnings = append(result.Warnings, w)
			warnings = append(warnings, w)
			s.logger.Warn("delete_previous failed", "path", form.Path, "error", cr.Err)
			s.notifyCleanupFailed(ctx, w)
			continue
		}
		s.markDeleted(ctx, form.Path)
		result.noteRemoved(form.Path)
	}
	result.deferred = nil
	// The new assets are persisted on the document now; nothing is left to
	// unwind.
	result.compensations = nil
	return warnings
}

func (s *service) Rollback(ctx context.Context, result *CommitResult) []CleanupWarning {
	if result == nil {
		return nil
	}

	var warnings []CleanupWarning
	stack := result.compensations
	for i := len(stack) - 1; i >= 0; i-- {
		form := stack[i]
		if cr := s.DeleteMedia(ctx, form); !cr.OK() {
			w := CleanupWarning{Op: "rollback", Form: &form, Err: cr.Err}
			warnings = append(warnings, w)
			s.notifyCleanupFailed(ctx, w)
			continue
		}
		s.markDeleted(ctx, form.Path)
	}
	result.compensations = nil
	// The superseded previous asset stays: the document still points at it.
	result.deferred = nil
	return warnings
}

func (s *service) DeleteMedia(ctx context.Context, form MediaForm) CleanupResult {
	if form.IsZero() {
		return CleanupResult{Form: form}
	}

	var err error
	switch {
	case form.IsHLS():
		if s.videos == nil {
			err = ErrVideoStoreNotConfigured
		} else {
			err = s.videos.DeleteRendition(ctx, form.RenditionName())
		}
	case form.Kind == MediaKindVideo:
		if s.videos == nil {
			err = ErrVideoStoreNotConfigured
		} else {
			err = s.videos.Delete(ctx, form.Path)
		}
	default:
		err = s.files.Delete(ctx, form.Path)
	}

	if err != nil {
		s.logger.Warn("asset delete failed",
			"kind", form.Kind, "storage_form", form.Form, "path", form.Path, "error", err)
		s.markLeaked(ctx, form)
		return CleanupResult{Form: form, Err: err}
	}

	if s.events != nil {
		if eventErr := s.events.MediaDeleted(ctx, form); eventErr != nil {
			s.logger.Warn("media deleted event failed", "error", eventErr)
		}
	}
	return CleanupResult{Form: form}
}

func (s *service) SweepLeaked(ctx context.Context, before time.Time) (int, []CleanupWarning, error) {
	if s.ledger == nil {
		return 0, nil, fmt.Errorf("ledger is required for sweeping")
	}

	leaked := AssetStatusLeaked
	assets, err := s.ledger.ListAssets(ctx, AssetFilter{
		Status:        &leaked,
		UpdatedBefore: &before,
	})
	if err != nil {
		return 0, nil, fmt.Errorf("list leaked assets: %w", err)
	}

	var (
		removed  int
		warnings []CleanupWarning
	)
	for _, a := range assets {
		form := MediaForm{Kind: a.Kind, Form: a.Form, Path: a.Path}
		if cr := s.DeleteMedia(ctx, form); !cr.OK() {
			warnings = append(warnings, CleanupWarning{Op: "sweep", Form: &form, Err: cr.Err})
			continue
		}
		s.markDeleted(ctx, a.Path)
		removed++
	}
	return removed, warnings, nil
}

// warn records a non-fatal failure on the result and in the log.
func (s *service) warn(ctx context.Context, result *CommitResult, op string, form MediaForm, err error) {
	f := form
	w := CleanupWarning{Op: op, Form: &f, Err: err}
	result.Warnings = append(result.Warnings, w)
	s.logger.Warn(op+" failed", "path", form.Path, "error", err)
	s.notifyCleanupFailed(ctx, w)
}

func (s *service) notifyCleanupFailed(ctx context.Context, w CleanupWarning) {
	if s.events == nil {
		return
	}
	if err := s.events.CleanupFailed(ctx, w); err != nil {
		s.logger.Warn("cleanup failed event failed", "error", err)
	}
}

// Ledger helpers. All best-effort: ledger trouble is logged, never returned.

func (s *service) recordAsset(ctx context.Context, form MediaForm, document string) {
	if s.ledger == nil {
		return
	}
	now := time.Now().UTC()
	asset := &Asset{
		ID:        uuid.New(),
		Path:      form.Path,
		Kind:      form.Kind,
		Form:      form.Form,
		Status:    AssetStatusLive,
		Document:  document,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.ledger.RecordAsset(ctx, asset); err != nil {
		s.logger.Warn("ledger record failed", "path", form.Path, "error", err)
	}
}

func (s *service) markDeleted(ctx context.Context, path string) {
	if s.ledger == nil {
		return
	}
	if err := s.ledger.UpdateAssetStatus(ctx, path, AssetStatusDeleted); err != nil {
		s.logger.Warn("ledger status update failed", "path", path, "error", err)
	}
}

func (s *service) markLeaked(ctx context.Context, form MediaForm) {
	if s.ledger == nil {
		return
	}
	err := s.ledger.UpdateAssetStatus(ctx, form.Path, AssetStatusLeaked)
	if errors.Is(err, ErrAssetNotFound) {
		// Legacy asset never recorded; register it so a sweep can retry.
		now := time.Now().UTC()
		err = s.ledger.RecordAsset(ctx, &Asset{
			ID:        uuid.New(),
			Path:      form.Path,
			Kind:      form.Kind,
			Form:      form.Form,
			Status:    AssetStatusLeaked,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err != nil {
		s.logger.Warn("ledger status update failed", "path", form.Path, "error", err)
	}
}
