package core

// errors.go defines the error taxonomy for the pipeline. Every error a
// caller can see falls into one category:
//
//   - format: unsupported extension or undecodable bytes
//   - schema: required canonical column missing after normalization
//   - row validation: invalid content_type or content for one row
//   - storage: the persistence gateway failed after validation succeeded
//   - not-found: detail lookup for a nonexistent upload id
//
// Categories are distinguishable with errors.Is / errors.As so the web layer
// can report exactly one clear message per failure.

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for file extensions other than .csv and .xlsx.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// ErrFileTooLarge is returned when the uploaded file exceeds MaxFileSize.
var ErrFileTooLarge = errors.New("file exceeds the maximum upload size")

// ErrNotFound is returned by the store when an upload id does not exist.
var ErrNotFound = errors.New("upload not found")

// DecodeError wraps a failure to decode file bytes into rows.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SchemaError reports the canonical columns missing from the header row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing required columns: %s", strings.Join(e.Missing, ", "))
}

// RowError reports a validation failure for a single data row. Row is the
// 1-based position of the data row in the file, not counting the header.
type RowError struct {
	Row    int
	Field  string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// StorageError wraps a persistence failure. It is reported distinctly from
// validation errors: the data was valid but not saved, and may be retried.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
