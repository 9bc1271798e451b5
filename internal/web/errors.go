package web

import (
	"errors"
	"net/http"

	"github.com/rapido-express/blogcms/internal/core"
	"github.com/rapido-express/blogcms/internal/logging"
)

// httpError maps an error from the ingestion core to an HTTP response.
// Validation failures carry the core error text verbatim so the caller can
// fix the offending row; storage failures get a fixed message that makes
// clear the file itself was fine.
func httpError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		decodeErr  *core.DecodeError
		schemaErr  *core.SchemaError
		rowErr     *core.RowError
		storageErr *core.StorageError
	)

	switch {
	case errors.Is(err, core.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "unsupported file format, expected .csv or .xlsx")

	case errors.Is(err, core.ErrFileTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")

	case errors.Is(err, core.ErrNotFound):
		writeError(w, http.StatusNotFound, "upload not found")

	case errors.As(err, &decodeErr):
		writeError(w, http.StatusBadRequest, decodeErr.Error())

	case errors.As(err, &schemaErr):
		writeError(w, http.StatusBadRequest, schemaErr.Error())

	case errors.As(err, &rowErr):
		writeError(w, http.StatusBadRequest, rowErr.Error())

	case errors.As(err, &storageErr):
		logging.FromContext(r.Context()).Error("storage failure", "error", err)
		writeError(w, http.StatusInternalServerError, "the file was valid but could not be saved, please retry")

	default:
		logging.FromContext(r.Context()).Error("unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
