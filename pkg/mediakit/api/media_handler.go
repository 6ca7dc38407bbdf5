package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

const maxUploadMemory = 32 << 20

// CommitMediaResponse is the response body for a media commit
type CommitMediaResponse struct {
	URL       string                    `json:"url"`
	Converted bool                      `json:"converted"`
	Warnings  []mediakit.CleanupWarning `json:"warnings,omitempty"`
}

// urlFieldFor returns the document field that holds the media URL for a
// collection. Ads keep their legacy field name.
func urlFieldFor(collection string) string {
	if collection == "ads" {
		return "ad_url"
	}
	return "media_url"
}

// chunkSizeFor returns the segment-count divisor for a collection. Ads use
// the small profile, everything else the large one.
func chunkSizeFor(collection string) int64 {
	if collection == "ads" {
		return mediakit.AdChunkSize
	}
	return mediakit.MessageChunkSize
}

// CommitMedia handles a multipart media submission for one document: it
// uploads and converts the file, persists the resulting URL on the document,
// and unwinds the uploads if the document save fails.
func (h *Handler) CommitMedia(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	id := chi.URLParam(r, "id")

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	doc, err := h.docs.Get(r.Context(), collection, id)
	if err != nil {
		h.renderDocError(w, r, "fetch document", err)
		return
	}

	urlField := urlFieldFor(collection)
	previousURL, _ := doc[urlField].(string)

	req := mediakit.CommitRequest{
		ManualURL:   r.FormValue("url"),
		PreviousURL: previousURL,
		Editing:     previousURL != "",
		ChunkSize:   chunkSizeFor(collection),
		Document:    collection + "/" + id,
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		req.File = &mediakit.FileUpload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Data:        file,
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		http.Error(w, "invalid file field", http.StatusBadRequest)
		return
	}

	result, err := h.service.CommitMedia(r.Context(), req)
	if err != nil {
		slog.Error("Media commit failed", "collection", collection, "id", id, "error", err)
		switch {
		case errors.Is(err, mediakit.ErrUnsupportedMediaType):
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		case errors.Is(err, mediakit.ErrVideoStoreNotConfigured):
			http.Error(w, err.Error(), http.StatusNotImplemented)
		default:
			http.Error(w, err.Error(), http.StatusBadGateway)
		}
		return
	}

	doc[urlField] = result.URL
	if err := h.docs.Update(r.Context(), collection, id, doc); err != nil {
		slog.Error("Document save failed, rolling back uploads",
			"collection", collection, "id", id, "error", err)
		warnings := h.service.Rollback(r.Context(), result)
		for _, warning := range warnings {
			slog.Warn("Rollback warning", "warning", warning.String())
		}
		h.renderDocError(w, r, "save document", err)
		return
	}

	// Only now, with the new URL saved, is the superseded asset deleted.
	for _, warning := range h.service.Finalize(r.Context(), result) {
		slog.Warn("Cleanup warning", "warning", warning.String())
	}

	slog.Info("Media committed", "collection", collection, "id", id,
		"url", result.URL, "converted", result.Converted, "warnings", len(result.Warnings))
	render.JSON(w, r, CommitMediaResponse{
		URL:       result.URL,
		Converted: result.Converted,
		Warnings:  result.Warnings,
	})
}

func (h *Handler) renderDocError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if errors.Is(err, mediakit.ErrPermissionDenied) {
		http.Error(w, "Access Denied", http.StatusForbidden)
		return
	}
	slog.Error("Document API error", "op", op, "error", err)
	http.Error(w, err.Error(), http.StatusBadGateway)
}
