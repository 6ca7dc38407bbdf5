package mediakit

import (
	"fmt"
	"path"
	"strings"
)

// MediaForm identifies one backing asset and how it is stored. Cleanup and
// rollback dispatch on the form instead of sniffing URL shapes: a raw image
// is deleted through the file store, a raw video through the video store, and
// an HLS package through the rendition delete endpoint.
type MediaForm struct {
	Kind MediaKind   `json:"kind"`
	Form StorageForm `json:"storage_form"`
	// Path is the same-origin path of the asset. For HLS it is the manifest
	// path, e.g. "/hls/movie1/movie1.m3u8".
	Path string `json:"path"`
}

// RawImageForm returns the form of a single uploaded image.
func RawImageForm(p string) MediaForm {
	return MediaForm{Kind: MediaKindImage, Form: StorageFormRaw, Path: p}
}

// RawVideoForm returns the form of a single uploaded, unconverted video.
func RawVideoForm(p string) MediaForm {
	return MediaForm{Kind: MediaKindVideo, Form: StorageFormRaw, Path: p}
}

// HLSForm returns the form of a converted adaptive-bitrate package,
// identified by its manifest path.
func HLSForm(manifestPath string) MediaForm {
	return MediaForm{Kind: MediaKindVideo, Form: StorageFormHLS, Path: manifestPath}
}

// IsZero reports whether the form identifies no asset.
func (f MediaForm) IsZero() bool {
	return f.Path == ""
}

// IsHLS reports whether the asset is an adaptive-bitrate package.
func (f MediaForm) IsHLS() bool {
	return f.Form == StorageFormHLS
}

// RenditionName returns the name of the HLS package the rendition delete
// endpoint expects: the directory holding the manifest, or the manifest base
// name when the manifest sits directly under /hls/.
func (f MediaForm) RenditionName() string {
	p := strings.Trim(f.Path, "/")
	if i := strings.Index(p, "hls/"); i >= 0 {
		rest := p[i+len("hls/"):]
		// First path element below hls/ is the package directory.
		if j := strings.IndexByte(rest, '/'); j > 0 {
			return rest[:j]
		}
		return strings.TrimSuffix(path.Base(rest), path.Ext(rest))
	}
	return strings.TrimSuffix(path.Base(p), path.Ext(p))
}

func (f MediaForm) String() string {
	if f.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s/%s:%s", f.Kind, f.Form, f.Path)
}

// ParseMediaForm classifies a persisted media URL into a MediaForm. It exists
// for the persistence boundary only: documents saved before forms were
// tracked carry bare URL strings, so the legacy shape rules apply. Empty and
// absolute external URLs identify no asset of ours and report ok=false.
//
// Shape rules, in order: a path containing "/hls/" or ending in ".m3u8" is an
// HLS package; a path starting with "/videos/" is a raw video; anything else
// is a raw image.
func ParseMediaForm(rawURL string) (form MediaForm, ok bool) {
	if rawURL == "" {
		return MediaForm{}, false
	}
	if strings.Contains(rawURL, "://") {
		// Absolute external URL; not backed by our storage.
		return MediaForm{}, false
	}
	switch {
	case strings.Contains(rawURL, "/hls/") || strings.HasSuffix(rawURL, ".m3u8"):
		return HLSForm(rawURL), true
	case strings.HasPrefix(rawURL, "/videos/"):
		return RawVideoForm(rawURL), true
	default:
		return RawImageForm(rawURL), true
	}
}
