package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// Store is an in-memory implementation of mediakit.FileStore and
// mediakit.VideoStore, used in tests and local development. It records every
// remote operation so tests can assert on call counts.
type Store struct {
	mu         sync.RWMutex
	prefix     string
	baseURL    string
	objects    map[string][]byte
	mimes      map[string]string
	renditions map[string]bool

	// Failure injection for tests.
	FailUploads bool
	FailDeletes bool

	ops []string
}

// New creates an in-memory store whose paths have no prefix (image slots).
func New() *Store {
	return NewWithPrefix("")
}

// NewWithPrefix creates an in-memory store whose generated paths start with
// the given prefix, e.g. "/videos/".
func NewWithPrefix(prefix string) *Store {
	return &Store{
		prefix:     prefix,
		baseURL:    "memory://store",
		objects:    make(map[string][]byte),
		mimes:      make(map[string]string),
		renditions: make(map[string]bool),
	}
}

// Upload stores the content under a generated name and returns it.
func (s *Store) Upload(ctx context.Context, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	s.record("upload")
	if s.FailUploads {
		return "", errors.New("upload refused")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	name := s.prefix + uuid.NewString() + path.Ext(opts.FileName)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[name] = data
	s.mimes[name] = opts.MimeType
	return name, nil
}

// Update replaces the content of an existing slot, keeping its name.
func (s *Store) Update(ctx context.Context, fileName string, r io.Reader, opts mediakit.UploadOptions) (string, error) {
	s.record("update")
	if s.FailUploads {
		return "", errors.New("update refused")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[fileName]; !exists {
		return "", errors.New("object not found")
	}
	s.objects[fileName] = data
	s.mimes[fileName] = opts.MimeType
	return fileName, nil
}

// Delete removes a slot.
func (s *Store) Delete(ctx context.Context, fileName string) error {
	s.record("delete")
	if s.FailDeletes {
		return errors.New("delete refused")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.objects[fileName]; !exists {
		return errors.New("object not found")
	}
	delete(s.objects, fileName)
	delete(s.mimes, fileName)
	return nil
}

// DeleteRendition removes an HLS package by name.
func (s *Store) DeleteRendition(ctx context.Context, name string) error {
	s.record("delete_rendition")
	if s.FailDeletes {
		return errors.New("delete refused")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.renditions[name] {
		return errors.New("rendition not found")
	}
	delete(s.renditions, name)
	return nil
}

// SourceURL returns the absolute URL of a stored raw video.
func (s *Store) SourceURL(fileName string) string {
	return s.baseURL + "/" + strings.TrimPrefix(fileName, "/")
}

// AddRendition pre-seeds an HLS package, as if a conversion had produced it.
func (s *Store) AddRendition(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.renditions[name] = true
}

// Exists reports whether a slot holds content.
func (s *Store) Exists(fileName string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[fileName]
	return ok
}

// RenditionExists reports whether an HLS package is present.
func (s *Store) RenditionExists(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renditions[name]
}

// Content returns the stored bytes of a slot.
func (s *Store) Content(fileName string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[fileName]
	return data, ok
}

// Ops returns the recorded operation log.
func (s *Store) Ops() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ops))
	copy(out, s.ops)
	return out
}

// CountOp returns how many times an operation ran.
func (s *Store) CountOp(op string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.ops {
		if o == op {
			n++
		}
	}
	return n
}

func (s *Store) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = append(s.ops, op)
}

var _ mediakit.VideoStore = (*Store)(nil)

// Seed stores content under an explicit name, for test fixtures.
func (s *Store) Seed(fileName, mimeType string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[fileName] = data
	s.mimes[fileName] = mimeType
}

func (s *Store) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fmt.Sprintf("memory store (%d objects, %d renditions)", len(s.objects), len(s.renditions))
}
