package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// Ledger is an in-memory implementation of mediakit.Ledger, keyed by asset
// path. Used in tests and single-process deployments.
type Ledger struct {
	mu     sync.RWMutex
	assets map[string]*mediakit.Asset
}

// New creates a new in-memory ledger.
func New() *Ledger {
	return &Ledger{
		assets: make(map[string]*mediakit.Asset),
	}
}

// RecordAsset stores a new asset record, replacing any record with the same
// path (a reused storage slot is the same backing asset).
func (l *Ledger) RecordAsset(ctx context.Context, asset *mediakit.Asset) error {
	if asset.Path == "" {
		return fmt.Errorf("asset path is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	stored := *asset
	l.assets[asset.Path] = &stored
	return nil
}

// GetAssetByPath returns the asset recorded under path.
func (l *Ledger) GetAssetByPath(ctx context.Context, path string) (*mediakit.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	asset, ok := l.assets[path]
	if !ok {
		return nil, mediakit.ErrAssetNotFound
	}
	out := *asset
	return &out, nil
}

// UpdateAssetStatus transitions the asset recorded under path.
func (l *Ledger) UpdateAssetStatus(ctx context.Context, path string, status mediakit.AssetStatus) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	asset, ok := l.assets[path]
	if !ok {
		return mediakit.ErrAssetNotFound
	}
	now := time.Now().UTC()
	asset.Status = status
	asset.UpdatedAt = now
	if status == mediakit.AssetStatusDeleted {
		asset.DeletedAt = &now
	}
	return nil
}

// ListAssets returns the assets matching the filter, oldest first.
func (l *Ledger) ListAssets(ctx context.Context, filter mediakit.AssetFilter) ([]*mediakit.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*mediakit.Asset
	for _, asset := range l.assets {
		if !matches(asset, filter) {
			continue
		}
		copied := *asset
		out = append(out, &copied)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	if filter.Offset != nil && *filter.Offset > 0 {
		if *filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[*filter.Offset:]
	}
	if filter.Limit != nil && *filter.Limit >= 0 && *filter.Limit < len(out) {
		out = out[:*filter.Limit]
	}
	return out, nil
}

func matches(asset *mediakit.Asset, filter mediakit.AssetFilter) bool {
	if filter.Status != nil && asset.Status != *filter.Status {
		return false
	}
	if len(filter.Statuses) > 0 {
		found := false
		for _, st := range filter.Statuses {
			if asset.Status == st {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Kind != nil && asset.Kind != *filter.Kind {
		return false
	}
	if filter.CreatedBefore != nil && !asset.CreatedAt.Before(*filter.CreatedBefore) {
		return false
	}
	if filter.UpdatedBefore != nil && !asset.UpdatedAt.Before(*filter.UpdatedBefore) {
		return false
	}
	return true
}

var _ mediakit.Ledger = (*Ledger)(nil)
