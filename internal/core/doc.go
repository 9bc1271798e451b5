// Package core implements the tabular content pipeline for the blog service:
// decoding an uploaded CSV or Excel file into raw rows, normalizing legacy
// column headers onto a canonical field set, validating each row against the
// content-type vocabulary, and rendering stored rows as HTML.
//
// The package has no HTTP dependencies. Persistence goes through the Store
// interface, implemented by internal/repository against PostgreSQL.
//
// A batch is atomic: either every row of an uploaded file validates and is
// handed to the store in one call, or the first invalid row aborts the whole
// file with an error naming the row and reason.
package core
