// Package api exposes the media orchestrator and the locale engine over HTTP
// for the dashboard frontend.
package api

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"

	"github.com/iptvkit/mediakit/pkg/mediakit"
	"github.com/iptvkit/mediakit/pkg/mediakit/docstore"
)

// DocumentStore is the slice of the Document API the handlers need.
type DocumentStore interface {
	Get(ctx context.Context, collection, id string) (docstore.Document, error)
	Update(ctx context.Context, collection, id string, doc docstore.Document) error
}

// Handler handles HTTP requests for media commits, asset sweeps and locale
// resolution.
type Handler struct {
	service mediakit.Service
	docs    DocumentStore
	catalog *mediakit.Catalog
	auth    *jwtauth.JWTAuth
}

// Option configures a Handler.
type Option func(*Handler)

// WithJWTAuth enables JWT bearer authentication on all routes.
func WithJWTAuth(auth *jwtauth.JWTAuth) Option {
	return func(h *Handler) { h.auth = auth }
}

// NewHandler creates a new API handler.
func NewHandler(service mediakit.Service, docs DocumentStore, catalog *mediakit.Catalog, opts ...Option) *Handler {
	h := &Handler{
		service: service,
		docs:    docs,
		catalog: catalog,
	}
	if h.catalog == nil {
		h.catalog = mediakit.DefaultCatalog()
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the routes for the media API
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	if h.auth != nil {
		r.Use(jwtauth.Verifier(h.auth))
		r.Use(jwtauth.Authenticator)
	}

	r.Post("/locale/resolve", h.ResolveLocale)
	r.Post("/locale/languages", h.AvailableLanguages)
	r.Post("/locale/dedupe", h.DedupeEntries)

	r.Post("/assets/sweep", h.SweepAssets)

	r.Post("/{collection}/{id}/media", h.CommitMedia)

	return r
}
