package mediakit

import (
	"time"

	"github.com/google/uuid"
)

// MediaKind is the payload class of a raw asset, inferred from the MIME type
// at selection time.
type MediaKind string

// Media kind constants (typed).
const (
	MediaKindImage MediaKind = "image"
	MediaKindVideo MediaKind = "video"
)

// StorageForm is how a backing asset is laid out in remote storage.
type StorageForm string

// Storage form constants (typed).
const (
	// StorageFormRaw is a single uploaded file.
	StorageFormRaw StorageForm = "raw"
	// StorageFormHLS is an adaptive-bitrate package: a manifest plus segments.
	StorageFormHLS StorageForm = "hls"
)

// AssetStatus is the ledger lifecycle state of a backing asset.
type AssetStatus string

// Asset status constants (typed).
const (
	AssetStatusLive    AssetStatus = "live"
	AssetStatusDeleted AssetStatus = "deleted"
	// AssetStatusLeaked marks an asset whose best-effort delete failed. Leaked
	// assets stay in the ledger until a sweep retries the delete.
	AssetStatusLeaked AssetStatus = "leaked"
)

// Asset is one ledger record for a backing asset in remote storage.
type Asset struct {
	ID        uuid.UUID   `json:"id"`
	Path      string      `json:"path"`
	Kind      MediaKind   `json:"kind"`
	Form      StorageForm `json:"storage_form"`
	Status    AssetStatus `json:"status"`
	Document  string      `json:"document,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	DeletedAt *time.Time  `json:"deleted_at,omitempty"`
}

// AssetFilter defines filtering options for listing ledger assets.
type AssetFilter struct {
	Status        *AssetStatus
	Statuses      []AssetStatus
	Kind          *MediaKind
	CreatedBefore *time.Time
	UpdatedBefore *time.Time
	Limit         *int
	Offset        *int
}

// LocalizedEntry is one localized text variant of a document field. Field
// names follow the Document API wire format.
type LocalizedEntry struct {
	Locale     string `json:"Locale"`
	Text       string `json:"Text"`
	SourceType string `json:"SourceType,omitempty"`
}

// Language is one selectable display language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}
