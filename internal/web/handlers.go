package web

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rapido-express/blogcms/internal/core"
	"github.com/rapido-express/blogcms/internal/logging"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// uploadForm holds the optional multipart form fields accompanying a file.
type uploadForm struct {
	Uploader string `validate:"omitempty,max=100"`
}

// multipartOverhead is extra room on top of the file size limit for the
// multipart boundary and form fields.
const multipartOverhead = 64 << 10

// handleBlogPage serves the rendered blog at GET /.
func (s *Server) handleBlogPage(w http.ResponseWriter, r *http.Request) {
	body, err := s.service.RenderBlog(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}

	if body == "" {
		body = `<p class="empty">No hay contenido publicado.</p>`
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, blogShell, body)
}

// blogShell wraps the rendered rows in a minimal page. The rows themselves
// are produced by core.RenderRows.
const blogShell = `<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Blog Rapido Express</title>
<style>
body { max-width: 46rem; margin: 2rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; }
.blog-image { max-width: 100%%; height: auto; }
.empty { color: #666; font-style: italic; }
</style>
</head>
<body>
%s
</body>
</html>
`

// handleUpload accepts a spreadsheet at POST /api/upload and runs the full
// ingestion pipeline. The whole batch is rejected on the first invalid row.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFileSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "file exceeds the upload size limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field in multipart form")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	form := uploadForm{
		Uploader: strings.TrimSpace(r.FormValue("uploader")),
	}
	if err := validate.Struct(form); err != nil {
		writeError(w, http.StatusBadRequest, "uploader name is too long (max 100 characters)")
		return
	}

	summary, err := s.service.ProcessUpload(r.Context(), core.UploadRequest{
		FileName:      header.Filename,
		Uploader:      form.Uploader,
		ClientAddress: clientAddress(r),
		Data:          data,
	})
	if err != nil {
		logger.Warn("upload rejected", "file", header.Filename, "error", err)
		httpError(w, r, err)
		return
	}

	logger.Info("upload accepted",
		"upload_id", summary.UploadID,
		"file", header.Filename,
		"rows", summary.RowCount,
	)
	writeJSON(w, http.StatusCreated, summary)
}

// handleHistory lists recent uploads at GET /api/history.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	uploads, err := s.service.History(r.Context(), limit)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"uploads": uploads,
		"count":   len(uploads),
	})
}

// handleUploadDetail returns one upload and its rows at GET /api/uploads/{uploadID}.
func (s *Server) handleUploadDetail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "uploadID"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "upload id must be a positive integer")
		return
	}

	rec, rows, err := s.service.Detail(r.Context(), id)
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"upload": rec,
		"rows":   rows,
	})
}

// handleBlogRows returns the current blog content as JSON at GET /api/blog.
func (s *Server) handleBlogRows(w http.ResponseWriter, r *http.Request) {
	rows, err := s.service.LatestRows(r.Context())
	if err != nil {
		httpError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  rows,
		"count": len(rows),
	})
}

// handleInfo describes the service and its accepted input at GET /api/info.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":          "Blog Rapido Express",
		"mode":          s.service.Mode(),
		"database":      databaseName(s.cfg.Database.URL),
		"archive":       s.cfg.Archive.Enabled,
		"formats":       []string{".csv", ".xlsx"},
		"content_types": []string{"T", "ST", "P", "I"},
		"max_file_size": s.cfg.Upload.MaxFileSize,
	})
}

// databaseName extracts the database name from the connection URL, without
// exposing credentials or host details.
func databaseName(dbURL string) string {
	u, err := url.Parse(dbURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}

// handleHealth reports liveness and database reachability at GET /health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "degraded",
			"database": "unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "up",
	})
}

// clientAddress extracts the client IP without the port. RealIP middleware
// has already resolved proxy headers into RemoteAddr, which may then carry
// no port at all.
func clientAddress(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
