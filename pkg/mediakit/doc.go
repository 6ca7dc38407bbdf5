// Package mediakit implements the media lifecycle core of an IPTV
// administration system.
//
// The central operation is CommitMedia: given a user-selected file (or a
// manually entered URL) and the asset a document previously pointed at, it
// uploads the raw asset, optionally converts video into an HLS rendition,
// cleans up superseded assets, and returns the single URL to persist. The
// three remote collaborators (file storage, video storage, transcoder) offer
// no transaction between them, so the service tracks compensating actions as
// it goes and exposes Rollback for the caller to unwind a commit whose
// document save failed afterwards.
//
// The package also provides the locale resolution engine used by the VOD and
// guest-messaging screens: pure functions selecting the best localized entry
// for a requested language against an injected, immutable language catalog.
package mediakit
