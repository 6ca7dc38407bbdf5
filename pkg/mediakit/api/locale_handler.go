package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// ResolveLocaleRequest is the request body for one locale resolution
type ResolveLocaleRequest struct {
	Entries     []mediakit.LocalizedEntry `json:"entries"`
	Locale      string                    `json:"locale"`
	Fallback    string                    `json:"fallback,omitempty"`
	SourceType  string                    `json:"source_type,omitempty"`
	SourceTypes []string                  `json:"source_types,omitempty"`
}

// ResolveLocaleResponse is the response body for one locale resolution
type ResolveLocaleResponse struct {
	Entry *mediakit.LocalizedEntry `json:"entry"`
}

// ResolveLocale resolves the best entry for a requested locale. When
// source_types is set the types are tried in order, unfiltered last.
func (h *Handler) ResolveLocale(w http.ResponseWriter, r *http.Request) {
	var req ResolveLocaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var opts []mediakit.ResolveOption
	if req.Fallback != "" {
		opts = append(opts, mediakit.WithFallback(req.Fallback))
	}

	var entry *mediakit.LocalizedEntry
	if len(req.SourceTypes) > 0 {
		entry = mediakit.ResolveAny(req.Entries, req.Locale, req.SourceTypes, opts...)
	} else {
		if req.SourceType != "" {
			opts = append(opts, mediakit.WithSourceType(req.SourceType))
		}
		entry = mediakit.Resolve(req.Entries, req.Locale, opts...)
	}

	render.JSON(w, r, ResolveLocaleResponse{Entry: entry})
}

// AvailableLanguagesRequest carries the entry collections of one document
type AvailableLanguagesRequest struct {
	Collections [][]mediakit.LocalizedEntry `json:"collections"`
}

// AvailableLanguagesResponse lists the selectable languages
type AvailableLanguagesResponse struct {
	Languages []mediakit.Language `json:"languages"`
}

// AvailableLanguages returns the catalog languages present in the given
// entry collections, in catalog order.
func (h *Handler) AvailableLanguages(w http.ResponseWriter, r *http.Request) {
	var req AvailableLanguagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	languages := mediakit.AvailableLanguages(h.catalog, req.Collections...)
	render.JSON(w, r, AvailableLanguagesResponse{Languages: languages})
}

// DedupeRequest is the request body for entry deduplication
type DedupeRequest struct {
	Entries []mediakit.LocalizedEntry `json:"entries"`
}

// DedupeResponse is the response body for entry deduplication
type DedupeResponse struct {
	Entries []mediakit.LocalizedEntry `json:"entries"`
}

// DedupeEntries removes duplicate (text, locale) pairs, keeping first
// occurrences.
func (h *Handler) DedupeEntries(w http.ResponseWriter, r *http.Request) {
	var req DedupeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	render.JSON(w, r, DedupeResponse{Entries: mediakit.Dedupe(req.Entries)})
}

// SweepAssetsRequest is the request body for a leaked-asset sweep
type SweepAssetsRequest struct {
	Before time.Time `json:"before"`
}

// SweepAssetsResponse is the response body for a leaked-asset sweep
type SweepAssetsResponse struct {
	Swept    int                       `json:"swept"`
	Warnings []mediakit.CleanupWarning `json:"warnings,omitempty"`
}

// SweepAssets retries deletion of leaked assets last touched before the
// given cutoff.
func (h *Handler) SweepAssets(w http.ResponseWriter, r *http.Request) {
	var req SweepAssetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Before.IsZero() {
		req.Before = time.Now().UTC()
	}

	swept, warnings, err := h.service.SweepLeaked(r.Context(), req.Before)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, SweepAssetsResponse{Swept: swept, Warnings: warnings})
}
