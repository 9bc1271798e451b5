package core

// ingest.go orchestrates the pipeline: decode bytes into raw rows, normalize
// the header once, validate each data row, and stop at the first failure so
// the batch is all-or-nothing.

import (
	"errors"
	"path/filepath"
)

// Ingest parses an uploaded file into validated content rows. fileName is
// used only for its extension. On any failure the partial row list is
// discarded and a single categorized error is returned.
func Ingest(data []byte, fileName string) (*IngestResult, error) {
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	records, err := DecodeFile(data, filepath.Ext(fileName))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &DecodeError{Err: errors.New("file contains no rows")}
	}

	idx, err := NormalizeHeader(records[0])
	if err != nil {
		return nil, err
	}

	validator := NewRowValidator(idx)
	result := &IngestResult{Tally: make(TypeTally)}

	for i, row := range records[1:] {
		if isEmptyRow(row) {
			continue
		}
		cr, err := validator.ValidateRow(row, i+1)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, cr)
		result.Tally[cr.ContentType]++
	}

	if len(result.Rows) == 0 {
		return nil, &DecodeError{Err: errors.New("no data rows after header")}
	}
	return result, nil
}
