// Package postgres provides a PostgreSQL-backed asset ledger.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iptvkit/mediakit/pkg/mediakit"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Ledger implements mediakit.Ledger using PostgreSQL
type Ledger struct {
	db DBTX
}

// New creates a new PostgreSQL ledger
func New(db DBTX) mediakit.Ledger {
	return &Ledger{db: db}
}

// NewWithPool creates a new PostgreSQL ledger with connection pool
func NewWithPool(pool *pgxpool.Pool) mediakit.Ledger {
	return &Ledger{db: pool}
}

// Error handling helper
func (l *Ledger) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("asset already exists")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

func (l *Ledger) RecordAsset(ctx context.Context, asset *mediakit.Asset) error {
	query := `
		INSERT INTO media_asset (
			id, path, kind, storage_form, status, document, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (path) DO UPDATE SET
			kind = EXCLUDED.kind,
			storage_form = EXCLUDED.storage_form,
			status = EXCLUDED.status,
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at,
			deleted_at = NULL`

	_, err := l.db.Exec(ctx, query,
		asset.ID, asset.Path, asset.Kind, asset.Form,
		asset.Status, asset.Document, asset.CreatedAt, asset.UpdatedAt)

	if err != nil {
		return l.handlePostgresError("record asset", err)
	}

	return nil
}

func (l *Ledger) GetAssetByPath(ctx context.Context, path string) (*mediakit.Asset, error) {
	query := `
		SELECT id, path, kind, storage_form, status, document,
		       created_at, updated_at, deleted_at
		FROM media_asset WHERE path = $1`

	var asset mediakit.Asset
	err := l.db.QueryRow(ctx, query, path).Scan(
		&asset.ID, &asset.Path, &asset.Kind, &asset.Form, &asset.Status,
		&asset.Document, &asset.CreatedAt, &asset.UpdatedAt, &asset.DeletedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mediakit.ErrAssetNotFound
		}
		return nil, l.handlePostgresError("get asset", err)
	}

	return &asset, nil
}

func (l *Ledger) UpdateAssetStatus(ctx context.Context, path string, status mediakit.AssetStatus) error {
	var query string
	if status == mediakit.AssetStatusDeleted {
		query = `UPDATE media_asset SET status = $2, updated_at = NOW(), deleted_at = NOW() WHERE path = $1`
	} else {
		query = `UPDATE media_asset SET status = $2, updated_at = NOW() WHERE path = $1`
	}

	tag, err := l.db.Exec(ctx, query, path, status)
	if err != nil {
		return l.handlePostgresError("update asset status", err)
	}
	if tag.RowsAffected() == 0 {
		return mediakit.ErrAssetNotFound
	}

	return nil
}

func (l *Ledger) ListAssets(ctx context.Context, filter mediakit.AssetFilter) ([]*mediakit.Asset, error) {
	var (
		conds []string
		args  []interface{}
	)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		conds = append(conds, "status = "+arg(*filter.Status))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			placeholders = append(placeholders, arg(s))
		}
		conds = append(conds, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if filter.Kind != nil {
		conds = append(conds, "kind = "+arg(*filter.Kind))
	}
	if filter.CreatedBefore != nil {
		conds = append(conds, "created_at < "+arg(*filter.CreatedBefore))
	}
	if filter.UpdatedBefore != nil {
		conds = append(conds, "updated_at < "+arg(*filter.UpdatedBefore))
	}

	query := `
		SELECT id, path, kind, storage_form, status, document,
		       created_at, updated_at, deleted_at
		FROM media_asset`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"
	if filter.Limit != nil {
		query += " LIMIT " + arg(*filter.Limit)
	}
	if filter.Offset != nil {
		query += " OFFSET " + arg(*filter.Offset)
	}

	rows, err := l.db.Query(ctx, query, args...)
	if err != nil {
		return nil, l.handlePostgresError("list assets", err)
	}
	defer rows.Close()

	var assets []*mediakit.Asset
	for rows.Next() {
		var asset mediakit.Asset
		if err := rows.Scan(
			&asset.ID, &asset.Path, &asset.Kind, &asset.Form, &asset.Status,
			&asset.Document, &asset.CreatedAt, &asset.UpdatedAt, &asset.DeletedAt); err != nil {
			return nil, err
		}
		assets = append(assets, &asset)
	}

	return assets, rows.Err()
}

// Schema returns the DDL for the ledger table. Callers run migrations
// themselves; this is provided for tooling and tests.
func Schema() string {
	return `
CREATE TABLE IF NOT EXISTS media_asset (
    id           UUID PRIMARY KEY,
    path         TEXT NOT NULL UNIQUE,
    kind         TEXT NOT NULL,
    storage_form TEXT NOT NULL,
    status       TEXT NOT NULL,
    document     TEXT NOT NULL DEFAULT '',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_media_asset_status ON media_asset (status, updated_at);`
}
