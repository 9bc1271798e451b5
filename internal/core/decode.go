package core

// decode.go turns uploaded file bytes into a sequence of raw rows with a
// header. CSV bytes are decoded as UTF-8, falling back to Windows-1252 when
// the bytes are not valid UTF-8 (legacy spreadsheet exports). Excel files
// are read from the first sheet of the workbook.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// MaxFileSize is the maximum allowed upload size (10MB). Enforced again by
// the web layer via http.MaxBytesReader; the check here bounds parse cost
// for non-HTTP callers.
var MaxFileSize int64 = 10 * 1024 * 1024

// DecodeFile decodes file bytes into raw records based on the asserted
// extension. The first record is the header row.
func DecodeFile(data []byte, ext string) ([][]string, error) {
	switch strings.ToLower(ext) {
	case ".csv":
		return decodeCSV(data)
	case ".xlsx":
		return decodeExcel(data)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func decodeCSV(data []byte) ([][]string, error) {
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		data = decoded
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return records, nil
}

func decodeExcel(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &DecodeError{Err: errors.New("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return rows, nil
}

// cleanCell trims whitespace, a UTF-8 BOM, and stray surrounding quotes
// left behind by spreadsheet exports.
func cleanCell(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
