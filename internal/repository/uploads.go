package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rapido-express/blogcms/internal/core"
)

// recordUploadAttempts bounds the connection-level retry of the write
// transaction. Per-request parsing and validation are never retried; only
// the storage call, and only when pgx reports the failure as safe to retry.
const recordUploadAttempts = 3

// retryBackoff is the pause between write attempts.
const retryBackoff = 100 * time.Millisecond

// UploadRepository implements core.Store against PostgreSQL.
type UploadRepository struct {
	pool *pgxpool.Pool
}

// NewUploadRepository creates the repository over a connection pool.
func NewUploadRepository(pool *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{pool: pool}
}

// RecordUpload inserts the upload record and its content rows in one
// transaction. Nothing is committed on any failure. Connection errors that
// pgx marks safe to retry are reattempted a bounded number of times before
// surfacing a StorageError.
func (r *UploadRepository) RecordUpload(ctx context.Context, rec *core.UploadRecord, rows []core.ContentRow) (int64, error) {
	var lastErr error
	for attempt := 0; attempt < recordUploadAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, &core.StorageError{Err: ctx.Err()}
			case <-time.After(retryBackoff):
			}
		}

		id, err := r.recordUploadOnce(ctx, rec, rows)
		if err == nil {
			return id, nil
		}
		lastErr = err
		if !pgconn.SafeToRetry(err) {
			break
		}
	}
	return 0, &core.StorageError{Err: lastErr}
}

func (r *UploadRepository) recordUploadOnce(ctx context.Context, rec *core.UploadRecord, rows []core.ContentRow) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	// released on every exit path; no-op after Commit
	defer tx.Rollback(ctx)

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO uploads (file_name, uploader, client_address, row_count, status, execution_mode)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6)
		RETURNING id, created_at`,
		rec.FileName, rec.Uploader, rec.ClientAddress, rec.RowCount, rec.Status, rec.ExecutionMode,
	).Scan(&id, &rec.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert upload: %w", err)
	}

	for i, row := range rows {
		_, err = tx.Exec(ctx, `
			INSERT INTO content_rows (upload_id, position, day, month, year, publication_number, content_type, content, style)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, i+1, row.Day, row.Month, row.Year, row.PublicationNumber,
			string(row.ContentType), row.Content, row.Style,
		)
		if err != nil {
			return 0, fmt.Errorf("insert content row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	rec.ID = id
	return id, nil
}

// ListUploads returns the most recent uploads, newest first.
func (r *UploadRepository) ListUploads(ctx context.Context, limit int) ([]core.UploadRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, file_name, uploader, COALESCE(client_address, ''), row_count, status, execution_mode, created_at
		FROM uploads
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, &core.StorageError{Err: fmt.Errorf("list uploads: %w", err)}
	}
	defer rows.Close()

	var records []core.UploadRecord
	for rows.Next() {
		var rec core.UploadRecord
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.Uploader, &rec.ClientAddress,
			&rec.RowCount, &rec.Status, &rec.ExecutionMode, &rec.CreatedAt); err != nil {
			return nil, &core.StorageError{Err: fmt.Errorf("scan upload: %w", err)}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Err: err}
	}
	return records, nil
}

// GetUploadDetail returns one upload and its rows in original insertion
// order, or core.ErrNotFound.
func (r *UploadRepository) GetUploadDetail(ctx context.Context, id int64) (*core.UploadRecord, []core.ContentRow, error) {
	rec := &core.UploadRecord{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, file_name, uploader, COALESCE(client_address, ''), row_count, status, execution_mode, created_at
		FROM uploads
		WHERE id = $1`, id,
	).Scan(&rec.ID, &rec.FileName, &rec.Uploader, &rec.ClientAddress,
		&rec.RowCount, &rec.Status, &rec.ExecutionMode, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, core.ErrNotFound
		}
		return nil, nil, &core.StorageError{Err: fmt.Errorf("get upload %d: %w", id, err)}
	}

	contentRows, err := r.queryContentRows(ctx, `
		SELECT day, month, year, publication_number, content_type, content, style
		FROM content_rows
		WHERE upload_id = $1
		ORDER BY position`, id)
	if err != nil {
		return nil, nil, err
	}
	return rec, contentRows, nil
}

// LatestRows returns the rows of the most recent upload in file order.
func (r *UploadRepository) LatestRows(ctx context.Context, limit int) ([]core.ContentRow, error) {
	return r.queryContentRows(ctx, `
		SELECT day, month, year, publication_number, content_type, content, style
		FROM content_rows
		WHERE upload_id = (SELECT id FROM uploads ORDER BY created_at DESC, id DESC LIMIT 1)
		ORDER BY position
		LIMIT $1`, limit)
}

func (r *UploadRepository) queryContentRows(ctx context.Context, sql string, args ...any) ([]core.ContentRow, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, &core.StorageError{Err: fmt.Errorf("query content rows: %w", err)}
	}
	defer rows.Close()

	var result []core.ContentRow
	for rows.Next() {
		var cr core.ContentRow
		var ct string
		if err := rows.Scan(&cr.Day, &cr.Month, &cr.Year, &cr.PublicationNumber,
			&ct, &cr.Content, &cr.Style); err != nil {
			return nil, &core.StorageError{Err: fmt.Errorf("scan content row: %w", err)}
		}
		cr.ContentType = core.ContentType(ct)
		result = append(result, cr)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StorageError{Err: err}
	}
	return result, nil
}
