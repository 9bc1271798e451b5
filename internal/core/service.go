package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Store is the persistence gateway the service writes through.
// Implementations must make RecordUpload transactional: the upload record
// and all of its content rows commit together or not at all, preserving file
// order. Implemented by internal/repository against PostgreSQL.
type Store interface {
	// RecordUpload persists one upload record plus its rows and returns the
	// generated upload id. Fills in rec.ID and rec.CreatedAt on success.
	RecordUpload(ctx context.Context, rec *UploadRecord, rows []ContentRow) (int64, error)

	// ListUploads returns the most recent upload records, newest first.
	ListUploads(ctx context.Context, limit int) ([]UploadRecord, error)

	// GetUploadDetail returns one upload and its rows in original insertion
	// order, or ErrNotFound.
	GetUploadDetail(ctx context.Context, id int64) (*UploadRecord, []ContentRow, error)

	// LatestRows returns the rows of the most recent upload in file order,
	// up to limit.
	LatestRows(ctx context.Context, limit int) ([]ContentRow, error)
}

// Archiver keeps a secondary copy of the raw uploaded file. Archiving is
// best-effort: a failure is logged but does not fail the upload, which is
// already committed.
type Archiver interface {
	Archive(fileName string, data []byte) error
}

const (
	// DefaultHistoryLimit is the history listing size when the caller does
	// not ask for one.
	DefaultHistoryLimit = 50

	// DefaultPageRows bounds how many rows the public blog page renders.
	DefaultPageRows = 100

	// DefaultUploader is recorded when the upload form leaves the name blank.
	DefaultUploader = "Anonymous"

	// StatusCompleted is the status of every persisted upload; failed
	// ingestions never reach the store.
	StatusCompleted = "completed"
)

// Service ties the ingestion pipeline to the store and renderer.
type Service struct {
	store   Store
	archive Archiver // nil disables archiving
	cache   *renderCache
	mode    string
}

// NewService creates the content service. mode is the deployment tag
// recorded on each upload for audit (it has no behavioral effect).
func NewService(store Store, archive Archiver, mode string) *Service {
	return &Service{
		store:   store,
		archive: archive,
		cache:   newRenderCache(),
		mode:    mode,
	}
}

// UploadRequest carries one uploaded file and its form metadata.
type UploadRequest struct {
	FileName      string
	Uploader      string
	ClientAddress string
	Data          []byte
}

// UploadSummary reports a successful ingestion back to the caller.
type UploadSummary struct {
	UploadID int64     `json:"upload_id"`
	RowCount int       `json:"row_count"`
	Tally    TypeTally `json:"tally"`
	Message  string    `json:"message"`
}

// ProcessUpload runs the full pipeline for one file: ingest, persist
// atomically, archive the raw bytes, and invalidate the render cache.
// Validation failures leave the store untouched.
func (s *Service) ProcessUpload(ctx context.Context, req UploadRequest) (*UploadSummary, error) {
	result, err := Ingest(req.Data, req.FileName)
	if err != nil {
		return nil, err
	}

	uploader := strings.TrimSpace(req.Uploader)
	if uploader == "" {
		uploader = DefaultUploader
	}

	rec := &UploadRecord{
		FileName:      req.FileName,
		Uploader:      uploader,
		ClientAddress: req.ClientAddress,
		RowCount:      len(result.Rows),
		Status:        StatusCompleted,
		ExecutionMode: s.mode,
	}

	id, err := s.store.RecordUpload(ctx, rec, result.Rows)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if err := s.archive.Archive(req.FileName, req.Data); err != nil {
			slog.Warn("failed to archive uploaded file",
				"file", req.FileName, "upload_id", id, "error", err)
		}
	}

	s.cache.Invalidate()

	return &UploadSummary{
		UploadID: id,
		RowCount: len(result.Rows),
		Tally:    result.Tally,
		Message:  fmt.Sprintf("processed %d rows from %s", len(result.Rows), req.FileName),
	}, nil
}

// History returns the most recent uploads, newest first. A non-positive
// limit uses DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, limit int) ([]UploadRecord, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListUploads(ctx, limit)
}

// Detail returns one upload and its rows in original order.
func (s *Service) Detail(ctx context.Context, id int64) (*UploadRecord, []ContentRow, error) {
	return s.store.GetUploadDetail(ctx, id)
}

// LatestRows returns the rows of the current content set.
func (s *Service) LatestRows(ctx context.Context) ([]ContentRow, error) {
	return s.store.LatestRows(ctx, DefaultPageRows)
}

// RenderBlog returns the public blog page HTML, from cache when possible.
func (s *Service) RenderBlog(ctx context.Context) (string, error) {
	if html, ok := s.cache.Get(); ok {
		return html, nil
	}

	rows, err := s.store.LatestRows(ctx, DefaultPageRows)
	if err != nil {
		return "", err
	}

	html := RenderRows(rows)
	s.cache.Set(html)
	return html, nil
}

// Mode returns the deployment tag this service records on uploads.
func (s *Service) Mode() string { return s.mode }
