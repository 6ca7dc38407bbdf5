// Package urlstrategy decides the public URL of a stored asset. Storage
// backends delegate SourceURL generation to a Strategy, so a deployment can
// route transcoder fetches and downloads through a CDN or the file server
// without changing where the bytes live.
package urlstrategy

import "strings"

// Strategy turns a storage path into the URL handed to consumers, most
// importantly the transcoder fetching a raw video.
type Strategy interface {
	SourceURL(storagePath string) string
}

// Func adapts a plain function into a Strategy. Storage backends use it to
// expose their native URL scheme as the delegated default.
type Func func(storagePath string) string

func (f Func) SourceURL(storagePath string) string { return f(storagePath) }

// CDN generates direct CDN URLs pointing at the object path.
type CDN struct {
	baseURL string
}

// NewCDN creates a CDN strategy rooted at the given base URL.
func NewCDN(baseURL string) *CDN {
	return &CDN{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *CDN) SourceURL(storagePath string) string {
	return s.baseURL + "/" + strings.TrimPrefix(storagePath, "/")
}

// Routed generates URLs served by the file server's download endpoint
// instead of pointing at storage directly.
type Routed struct {
	baseURL string
}

// NewRouted creates a strategy whose URLs go through {base}/file/{name}.
func NewRouted(baseURL string) *Routed {
	return &Routed{baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *Routed) SourceURL(storagePath string) string {
	return s.baseURL + "/file/" + strings.TrimPrefix(storagePath, "/")
}
