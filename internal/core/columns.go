package core

// columns.go normalizes the header row of an uploaded file onto the
// canonical field set. Several generations of content files are in
// circulation: Spanish headers with accents, the same headers typed without
// accents, English translations, and UTF-8 headers that were mangled by a
// Latin-1 round trip. All observed spellings live in one static alias table
// rather than per-call-site conditionals.

import "strings"

// Canonical field names the pipeline operates on.
const (
	FieldDay               = "day"
	FieldMonth             = "month"
	FieldYear              = "year"
	FieldPublicationNumber = "publication_number"
	FieldContentType       = "content_type"
	FieldContent           = "content"
	FieldStyle             = "style"
)

// requiredFields must all be present after normalization; style is optional
// and defaults to empty.
var requiredFields = []string{
	FieldDay,
	FieldMonth,
	FieldYear,
	FieldPublicationNumber,
	FieldContentType,
	FieldContent,
}

// columnAliases maps lowercased, trimmed header spellings to canonical
// fields. Keys include the encoding-mangled forms ("dã­a" is "día" read as
// Latin-1) seen in files exported from older tooling.
var columnAliases = map[string]string{
	// day
	"día": FieldDay,
	"dia": FieldDay,
	"day": FieldDay,
	"dã­a": FieldDay,
	// month
	"mes":   FieldMonth,
	"month": FieldMonth,
	// year
	"año":  FieldYear,
	"ano":  FieldYear,
	"year": FieldYear,
	"aã±o": FieldYear,
	// publication number
	"n° publicación":     FieldPublicationNumber,
	"n° publicacion":     FieldPublicationNumber,
	"nº publicación":     FieldPublicationNumber,
	"nº publicacion":     FieldPublicationNumber,
	"no publicación":     FieldPublicationNumber,
	"no publicacion":     FieldPublicationNumber,
	"número publicación": FieldPublicationNumber,
	"numero publicacion": FieldPublicationNumber,
	"numero_publicacion": FieldPublicationNumber,
	"publication number": FieldPublicationNumber,
	"nâ° publicaciã³n":   FieldPublicationNumber,
	// content type
	"tipo":           FieldContentType,
	"tipo_contenido": FieldContentType,
	"type":           FieldContentType,
	"content type":   FieldContentType,
	// content
	"contenido / url": FieldContent,
	"contenido/url":   FieldContent,
	"contenido":       FieldContent,
	"content / url":   FieldContent,
	"content":         FieldContent,
	// style
	"estilo": FieldStyle,
	"style":  FieldStyle,
}

// HeaderIndex maps canonical field names to their column position in the
// file. Fields absent from the file are absent from the map.
type HeaderIndex map[string]int

// NormalizeHeader maps a raw header row onto the canonical field set.
// Matching is case-insensitive and whitespace-trimmed; unrecognized headers
// are ignored. Returns a SchemaError naming the missing canonical fields if
// any required column is absent.
func NormalizeHeader(header []string) (HeaderIndex, error) {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(cleanCell(h))
		canonical, ok := columnAliases[key]
		if !ok {
			continue
		}
		// first occurrence wins when a file repeats a column
		if _, dup := idx[canonical]; !dup {
			idx[canonical] = i
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if _, ok := idx[f]; !ok {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return idx, nil
}
