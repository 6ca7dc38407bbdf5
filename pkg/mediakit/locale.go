package mediakit

import "strings"

// DefaultFallbackLocale is used by Resolve when no fallback option is given.
const DefaultFallbackLocale = "en"

type resolveParams struct {
	fallback   string
	sourceType string
}

// ResolveOption configures a Resolve call.
type ResolveOption func(*resolveParams)

// WithFallback sets the fallback locale tried after the exact and
// base-language steps.
func WithFallback(locale string) ResolveOption {
	return func(p *resolveParams) {
		p.fallback = locale
	}
}

// WithSourceType restricts resolution to entries of one source type (e.g.
// "TabletSynopsis" vs "Default" for a synopsis field). With a source type
// set, a locale step with no matching (locale, source type) pair is skipped
// outright; there is no unfiltered retry of the same step, and no last-resort
// pick either. Callers wanting a fallback chain across source types use
// ResolveAny.
func WithSourceType(sourceType string) ResolveOption {
	return func(p *resolveParams) {
		p.sourceType = sourceType
	}
}

// Resolve selects the best localized entry for the requested locale.
//
// Resolution order, first match wins:
//  1. exact locale match,
//  2. base-language match (strip the region suffix from the request),
//  3. fallback-locale match (exact or prefix),
//  4. first entry of the collection (unfiltered last resort; only when no
//     source type filter is in effect),
//  5. nil.
//
// Resolve is pure: identical inputs give identical results and the input
// slice is never modified.
func Resolve(entries []LocalizedEntry, requested string, opts ...ResolveOption) *LocalizedEntry {
	p := resolveParams{fallback: DefaultFallbackLocale}
	for _, opt := range opts {
		opt(&p)
	}

	if e := matchLocale(entries, p.sourceType, func(l string) bool { return l == requested }); e != nil {
		return e
	}

	if i := strings.IndexByte(requested, '-'); i > 0 {
		base := requested[:i]
		if e := matchLocale(entries, p.sourceType, func(l string) bool { return l == base }); e != nil {
			return e
		}
	}

	if p.fallback != "" {
		if e := matchLocale(entries, p.sourceType, func(l string) bool { return strings.HasPrefix(l, p.fallback) }); e != nil {
			return e
		}
	}

	if p.sourceType == "" && len(entries) > 0 {
		return &entries[0]
	}
	return nil
}

// ResolveAny runs the full resolution once per source type, in order, and
// finishes with an unfiltered pass. This is the display-screen pattern: try
// the tablet synopsis, fall back to the default one, then take whatever the
// locale chain yields.
func ResolveAny(entries []LocalizedEntry, requested string, sourceTypes []string, opts ...ResolveOption) *LocalizedEntry {
	for _, st := range sourceTypes {
		withType := make([]ResolveOption, 0, len(opts)+1)
		withType = append(withType, opts...)
		withType = append(withType, WithSourceType(st))
		if e := Resolve(entries, requested, withType...); e != nil {
			return e
		}
	}
	return Resolve(entries, requested, opts...)
}

func matchLocale(entries []LocalizedEntry, sourceType string, pred func(string) bool) *LocalizedEntry {
	for i := range entries {
		if !pred(entries[i].Locale) {
			continue
		}
		if sourceType != "" && entries[i].SourceType != sourceType {
			continue
		}
		return &entries[i]
	}
	return nil
}

// AvailableLanguages computes the distinct set of locales present across the
// given entry collections, keeps the ones the catalog knows, and returns them
// in the catalog's display order. Locales absent from the catalog are
// dropped: they are never shown as selectable.
func AvailableLanguages(catalog *Catalog, collections ...[]LocalizedEntry) []Language {
	seen := make(map[string]bool)
	for _, entries := range collections {
		for _, e := range entries {
			if catalog.Contains(e.Locale) {
				seen[e.Locale] = true
			}
		}
	}

	out := make([]Language, 0, len(seen))
	for _, l := range catalog.Languages() {
		if seen[l.Code] {
			out = append(out, l)
		}
	}
	return out
}

// Dedupe removes entries duplicated by (Text, Locale), keeping first
// occurrence order. The backend does not deduplicate genre-style multi-value
// fields, so display code runs collections through here before rendering.
// The input slice is not modified.
func Dedupe(entries []LocalizedEntry) []LocalizedEntry {
	type key struct{ text, locale string }
	seen := make(map[key]bool, len(entries))
	out := make([]LocalizedEntry, 0, len(entries))
	for _, e := range entries {
		k := key{e.Text, e.Locale}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
