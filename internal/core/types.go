package core

import "time"

// ContentType is one of the four canonical content-type codes.
type ContentType string

const (
	TypeTitle     ContentType = "T"
	TypeSubtitle  ContentType = "ST"
	TypeParagraph ContentType = "P"
	TypeImage     ContentType = "I"
)

// ValidContentType reports whether ct is one of the four canonical codes.
func ValidContentType(ct ContentType) bool {
	switch ct {
	case TypeTitle, TypeSubtitle, TypeParagraph, TypeImage:
		return true
	}
	return false
}

// Defaults substituted for non-critical metadata cells that are empty or
// unparseable. The source data is inconsistent about these fields, so they
// never fail validation; content_type and content have no defaults.
const (
	DefaultDay               = 1
	DefaultYear              = 2024
	DefaultPublicationNumber = 1
)

// ContentRow is one fragment of blog content parsed from an uploaded file.
type ContentRow struct {
	Day               int         `json:"day"`
	Month             string      `json:"month"`
	Year              int         `json:"year"`
	PublicationNumber int         `json:"publication_number"`
	ContentType       ContentType `json:"content_type"`
	Content           string      `json:"content"`
	Style             string      `json:"style"`
}

// UploadRecord is the append-only history entry for one file ingestion.
// CreatedAt is assigned by the store when the record is written.
type UploadRecord struct {
	ID            int64     `json:"id"`
	FileName      string    `json:"file_name"`
	Uploader      string    `json:"uploader"`
	ClientAddress string    `json:"client_address,omitempty"`
	RowCount      int       `json:"row_count"`
	Status        string    `json:"status"`
	ExecutionMode string    `json:"execution_mode"`
	CreatedAt     time.Time `json:"created_at"`
}

// TypeTally counts ingested rows per content type.
type TypeTally map[ContentType]int

// IngestResult is the outcome of a successful ingestion: the validated rows
// in file order plus the per-type tally.
type IngestResult struct {
	Rows  []ContentRow
	Tally TypeTally
}
