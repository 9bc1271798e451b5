package core

// validate.go enforces the per-row semantic rules. Two fields are
// load-bearing and strictly checked because they drive rendering:
// content_type must be one of the four canonical codes, and content must be
// non-empty text (or an absolute http(s) URL for image rows). The numeric
// metadata fields are cosmetic and substitute documented defaults instead of
// rejecting otherwise-good content.

import (
	"fmt"
	"strconv"
	"strings"
)

// RowValidator converts normalized raw cells into ContentRows.
type RowValidator struct {
	idx HeaderIndex
}

// NewRowValidator creates a validator over a normalized header index.
func NewRowValidator(idx HeaderIndex) *RowValidator {
	return &RowValidator{idx: idx}
}

// ValidateRow validates one data row and builds its ContentRow. rowNum is
// the 1-based position of the data row in the file, used in error messages.
func (v *RowValidator) ValidateRow(row []string, rowNum int) (ContentRow, error) {
	rawType := strings.TrimSpace(v.cell(row, FieldContentType))
	ct := ContentType(strings.ToUpper(rawType))
	if !ValidContentType(ct) {
		return ContentRow{}, &RowError{
			Row:    rowNum,
			Field:  FieldContentType,
			Reason: fmt.Sprintf("invalid content type %q, expected T/ST/P/I", rawType),
		}
	}

	content := strings.TrimSpace(v.cell(row, FieldContent))
	if ct == TypeImage {
		if !strings.HasPrefix(content, "http://") && !strings.HasPrefix(content, "https://") {
			return ContentRow{}, &RowError{
				Row:    rowNum,
				Field:  FieldContent,
				Reason: fmt.Sprintf("image row requires a valid URL (http:// or https://), got %q", content),
			}
		}
	} else if content == "" {
		return ContentRow{}, &RowError{
			Row:    rowNum,
			Field:  FieldContent,
			Reason: "content may not be empty",
		}
	}

	return ContentRow{
		Day:               intOrDefault(v.cell(row, FieldDay), DefaultDay),
		Month:             strings.TrimSpace(v.cell(row, FieldMonth)),
		Year:              intOrDefault(v.cell(row, FieldYear), DefaultYear),
		PublicationNumber: intOrDefault(v.cell(row, FieldPublicationNumber), DefaultPublicationNumber),
		ContentType:       ct,
		Content:           content,
		Style:             strings.TrimSpace(v.cell(row, FieldStyle)),
	}, nil
}

// cell returns the raw value for a canonical field, or "" when the column is
// absent or the row is short.
func (v *RowValidator) cell(row []string, field string) string {
	pos, ok := v.idx[field]
	if !ok || pos >= len(row) {
		return ""
	}
	return row[pos]
}

// intOrDefault parses an integer cell, substituting def for empty or
// unparseable values. Tolerates float renderings like "21.0" that
// spreadsheet tools produce for integer columns.
func intOrDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return def
}
