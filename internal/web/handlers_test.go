package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rapido-express/blogcms/internal/config"
	"github.com/rapido-express/blogcms/internal/core"
)

const sampleCSV = "Día,Mes,Año,N° Publicación,Tipo,Contenido / URL,Estilo\n" +
	"15,Marzo,2025,3,T,Bienvenidos al blog,color:red\n" +
	"15,Marzo,2025,3,P,Primer párrafo,\n"

type fakeStore struct {
	records   []core.UploadRecord
	rows      [][]core.ContentRow
	latest    []core.ContentRow
	recordErr error
	nextID    int64
}

func (f *fakeStore) RecordUpload(ctx context.Context, rec *core.UploadRecord, rows []core.ContentRow) (int64, error) {
	if f.recordErr != nil {
		return 0, f.recordErr
	}
	f.nextID++
	rec.ID = f.nextID
	rec.CreatedAt = time.Now()
	f.records = append(f.records, *rec)
	f.rows = append(f.rows, rows)
	f.latest = rows
	return f.nextID, nil
}

func (f *fakeStore) ListUploads(ctx context.Context, limit int) ([]core.UploadRecord, error) {
	if limit > len(f.records) {
		limit = len(f.records)
	}
	return f.records[:limit], nil
}

func (f *fakeStore) GetUploadDetail(ctx context.Context, id int64) (*core.UploadRecord, []core.ContentRow, error) {
	for i, rec := range f.records {
		if rec.ID == id {
			return &f.records[i], f.rows[i], nil
		}
	}
	return nil, nil, core.ErrNotFound
}

func (f *fakeStore) LatestRows(ctx context.Context, limit int) ([]core.ContentRow, error) {
	if limit > len(f.latest) {
		limit = len(f.latest)
	}
	return f.latest[:limit], nil
}

type okPinger struct{ err error }

func (p okPinger) Ping(ctx context.Context) error { return p.err }

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 30 * time.Second,
		},
		Upload: config.UploadConfig{
			MaxFileSize: 10 << 20,
		},
		Rate: config.RateLimitConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T, store core.Store, pingErr error) *Server {
	t.Helper()
	service := core.NewService(store, nil, "test")
	return NewServer(service, testConfig(), okPinger{err: pingErr})
}

func multipartUpload(t *testing.T, fileName, contents, uploader string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(contents)); err != nil {
		t.Fatal(err)
	}
	if uploader != "" {
		if err := mw.WriteField("uploader", uploader); err != nil {
			t.Fatal(err)
		}
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadAccepted(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store, nil)

	body, contentType := multipartUpload(t, "blog.csv", sampleCSV, "Maria")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body)
	}

	var summary core.UploadSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if summary.UploadID != 1 {
		t.Errorf("UploadID = %d, want 1", summary.UploadID)
	}
	if summary.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", summary.RowCount)
	}

	if len(store.records) != 1 {
		t.Fatalf("stored %d records, want 1", len(store.records))
	}
	if store.records[0].Uploader != "Maria" {
		t.Errorf("Uploader = %q, want %q", store.records[0].Uploader, "Maria")
	}
}

func TestUploadInvalidRowRejected(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store, nil)

	csv := "Día,Mes,Año,N° Publicación,Tipo,Contenido / URL,Estilo\n" +
		"15,Marzo,2025,3,X,contenido,\n"
	body, contentType := multipartUpload(t, "blog.csv", csv, "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "row 1") {
		t.Errorf("error body %q does not name the offending row", rec.Body)
	}
	if len(store.records) != 0 {
		t.Error("invalid upload reached the store")
	}
}

func TestUploadUnsupportedFormat(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	body, contentType := multipartUpload(t, "blog.pdf", "junk", "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), "unsupported file format") {
		t.Errorf("unexpected error body: %s", rec.Body)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("uploader", "Maria")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body)
	}
}

func TestUploadStorageFailure(t *testing.T) {
	store := &fakeStore{recordErr: &core.StorageError{Err: errors.New("connection refused")}}
	srv := newTestServer(t, store, nil)

	body, contentType := multipartUpload(t, "blog.csv", sampleCSV, "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500; body: %s", rec.Code, rec.Body)
	}
	// Internal details stay out of the response
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("storage error details leaked to client: %s", rec.Body)
	}
}

func TestUploaderTooLong(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	body, contentType := multipartUpload(t, "blog.csv", sampleCSV, strings.Repeat("a", 101))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body)
	}
}

func TestHistory(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store, nil)

	// Seed two uploads through the API
	for i := 0; i < 2; i++ {
		body, contentType := multipartUpload(t, "blog.csv", sampleCSV, "")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		srv.Router().ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/history?limit=1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Uploads []core.UploadRecord `json:"uploads"`
		Count   int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Count != 1 || len(resp.Uploads) != 1 {
		t.Errorf("count = %d, uploads = %d, want 1 each", resp.Count, len(resp.Uploads))
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	for _, limit := range []string{"abc", "-5", "0"} {
		req := httptest.NewRequest(http.MethodGet, "/api/history?limit="+limit, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%q: status = %d, want 400", limit, rec.Code)
		}
	}
}

func TestUploadDetail(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store, nil)

	body, contentType := multipartUpload(t, "blog.csv", sampleCSV, "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/uploads/1", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Upload core.UploadRecord `json:"upload"`
		Rows   []core.ContentRow `json:"rows"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Upload.ID != 1 {
		t.Errorf("upload ID = %d, want 1", resp.Upload.ID)
	}
	if len(resp.Rows) != 2 {
		t.Errorf("rows = %d, want 2", len(resp.Rows))
	}
}

func TestUploadDetailNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/99", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body: %s", rec.Code, rec.Body)
	}
}

func TestUploadDetailBadID(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/abc", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400; body: %s", rec.Code, rec.Body)
	}
}

func TestBlogPageRendersContent(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store, nil)

	body, contentType := multipartUpload(t, "blog.csv", sampleCSV, "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if !strings.Contains(rec.Body.String(), `<h1 style="color:red">Bienvenidos al blog</h1>`) {
		t.Errorf("rendered page missing title fragment: %s", rec.Body)
	}
}

func TestBlogPageEmpty(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No hay contenido") {
		t.Errorf("empty blog page missing placeholder: %s", rec.Body)
	}
}

func TestBlogRowsJSON(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(t, store, nil)

	body, contentType := multipartUpload(t, "blog.csv", sampleCSV, "")
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	srv.Router().ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/blog", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Rows  []core.ContentRow `json:"rows"`
		Count int               `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2", resp.Count)
	}
	if resp.Rows[0].ContentType != core.TypeTitle {
		t.Errorf("first row type = %q, want %q", resp.Rows[0].ContentType, core.TypeTitle)
	}
}

func TestInfo(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/info", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp["mode"] != "test" {
		t.Errorf("mode = %v, want test", resp["mode"])
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
}

func TestHealthDatabaseDown(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, errors.New("dial failed"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503; body: %s", rec.Code, rec.Body)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, &fakeStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/info", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}

func TestRateLimitUpload(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 100, UploadLimit: 2}
	service := core.NewService(&fakeStore{}, nil, "test")
	srv := NewServer(service, cfg, okPinger{})

	var last int
	for i := 0; i < 3; i++ {
		body, contentType := multipartUpload(t, "blog.csv", sampleCSV, "")
		req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.RemoteAddr = "10.0.0.7:1234"
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		last = rec.Code
	}

	if last != http.StatusTooManyRequests {
		t.Errorf("third upload status = %d, want 429", last)
	}
}
