package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkravets/docvision/internal/core/domain"
)

type ingestFake struct {
	err error
}

func (f ingestFake) Submit(_ context.Context, filename, contentType string, body io.Reader) (*domain.Document, domain.FieldMap, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return nil, nil, err
	}
	now := time.Now().UTC()
	return &domain.Document{
		ID:          "doc-1",
		Filename:    filename,
		ContentType: contentType,
		DocType:     domain.TypePassport,
		UploadedAt:  now,
		UpdatedAt:   now,
	}, domain.FieldMap{"full_name": "Jane Roe"}, nil
}

type correctorFake struct {
	created bool
	err     error
	gotKey  string
	gotVal  string
}

func (f *correctorFake) Correct(_ context.Context, _, key, value string) (bool, error) {
	f.gotKey = key
	f.gotVal = value
	return f.created, f.err
}

type readerFake struct {
	doc    *domain.Document
	fields []domain.Field
	blob   []byte
	err    error
}

func (f readerFake) GetByID(context.Context, string) (*domain.Document, []domain.Field, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.doc, f.fields, nil
}

func (f readerFake) List(context.Context, int) ([]domain.Document, map[string][]domain.Field, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	if f.doc == nil {
		return nil, nil, nil
	}
	return []domain.Document{*f.doc}, map[string][]domain.Field{f.doc.ID: f.fields}, nil
}

func (f readerFake) GetContent(context.Context, string) (*domain.Document, []byte, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.doc, f.blob, nil
}

type exporterFake struct {
	out []byte
	err error
}

func (f exporterFake) ExportXLSX(context.Context, int) ([]byte, error) { return f.out, f.err }

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishReprocess(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, id)
	return nil
}

func (f *queueFake) SubscribeReprocess(context.Context, func(context.Context, string) error) error {
	return nil
}

func docFixture() *domain.Document {
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Document{
		ID:          "doc-1",
		Filename:    "passport.jpg",
		ContentType: "image/jpeg",
		DocType:     domain.TypePassport,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
}

func newTestRouter(ingest ingestFake, corrector *correctorFake, reader readerFake, exporter exporterFake, queue *queueFake) http.Handler {
	if corrector == nil {
		corrector = &correctorFake{}
	}
	if queue == nil {
		queue = &queueFake{}
	}
	return NewRouter(ingest, corrector, reader, exporter, queue, nil, "api", 0, 0).Handler()
}

type limitRecordingReader struct {
	readerFake
	got *int
}

func (f limitRecordingReader) List(ctx context.Context, limit int) ([]domain.Document, map[string][]domain.Field, error) {
	*f.got = limit
	return f.readerFake.List(ctx, limit)
}

func TestListUsesConfiguredDefaultLimit(t *testing.T) {
	var got int
	reader := limitRecordingReader{readerFake: readerFake{doc: docFixture()}, got: &got}
	handler := NewRouter(ingestFake{}, &correctorFake{}, reader, exporterFake{}, &queueFake{}, nil, "api", 0, 25).Handler()

	req := httptest.NewRequest(http.MethodGet, "/v1/documents", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("status = %d", res.Code)
	}
	if got != 25 {
		t.Fatalf("default limit = %d, want 25", got)
	}
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestRouter(ingestFake{}, nil, readerFake{}, exporterFake{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestUploadDocumentReturnsDocumentAndFields(t *testing.T) {
	handler := newTestRouter(ingestFake{}, nil, readerFake{}, exporterFake{}, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "passport.jpg")
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte{0xFF, 0xD8, 0xFF}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}

	var docResp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&docResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if docResp["id"] != "doc-1" || docResp["document_type"] != "passport" {
		t.Fatalf("unexpected response: %+v", docResp)
	}
	fields, _ := docResp["fields"].(map[string]any)
	if _, ok := fields["full_name"]; !ok {
		t.Fatalf("expected extracted fields in response: %+v", docResp)
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	handler := newTestRouter(ingestFake{}, nil, readerFake{}, exporterFake{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestGetDocumentNotFoundMapsTo404(t *testing.T) {
	notFound := domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id missing"))
	handler := newTestRouter(ingestFake{}, nil, readerFake{err: notFound}, exporterFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestGetDocumentIncludesCorrectedFlag(t *testing.T) {
	reader := readerFake{
		doc: docFixture(),
		fields: []domain.Field{
			{DocumentID: "doc-1", Key: "full_name", Value: "Janet Roe", Corrected: true},
		},
	}
	handler := newTestRouter(ingestFake{}, nil, reader, exporterFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), `"corrected":true`) {
		t.Fatalf("expected corrected flag in response: %s", res.Body.String())
	}
}

func TestGetDocumentContentServesBlobInline(t *testing.T) {
	reader := readerFake{doc: docFixture(), blob: []byte{1, 2, 3}}
	handler := newTestRouter(ingestFake{}, nil, reader, exporterFake{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/doc-1/content", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Fatalf("Content-Type = %q", got)
	}
	if got := res.Header().Get("Content-Disposition"); !strings.Contains(got, "passport.jpg") {
		t.Fatalf("Content-Disposition = %q", got)
	}
	if res.Body.Len() != 3 {
		t.Fatalf("body length = %d, want 3", res.Body.Len())
	}
}

func TestCorrectFieldCreatedVersusUpdated(t *testing.T) {
	for _, tc := range []struct {
		name       string
		created    bool
		wantStatus int
	}{
		{name: "update existing row", created: false, wantStatus: http.StatusOK},
		{name: "insert new row", created: true, wantStatus: http.StatusCreated},
	} {
		t.Run(tc.name, func(t *testing.T) {
			corrector := &correctorFake{created: tc.created}
			handler := newTestRouter(ingestFake{}, corrector, readerFake{doc: docFixture()}, exporterFake{}, nil)

			body := strings.NewReader(`{"value":"1990-01-15"}`)
			req := httptest.NewRequest(http.MethodPut, "/v1/documents/doc-1/fields/date_of_birth", body)
			res := httptest.NewRecorder()
			handler.ServeHTTP(res, req)

			if res.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, res.Code, res.Body.String())
			}
			if corrector.gotKey != "date_of_birth" || corrector.gotVal != "1990-01-15" {
				t.Fatalf("corrector got key=%q value=%q", corrector.gotKey, corrector.gotVal)
			}
		})
	}
}

func TestCorrectFieldValidationFailureMapsTo422(t *testing.T) {
	corrector := &correctorFake{
		err: domain.WrapError(domain.ErrFieldValidation, "correct field", fmt.Errorf("invalid date format for date_of_birth, expected YYYY-MM-DD")),
	}
	handler := newTestRouter(ingestFake{}, corrector, readerFake{doc: docFixture()}, exporterFake{}, nil)

	body := strings.NewReader(`{"value":"garbage"}`)
	req := httptest.NewRequest(http.MethodPut, "/v1/documents/doc-1/fields/date_of_birth", body)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "expected YYYY-MM-DD") {
		t.Fatalf("expected validation message in body: %s", res.Body.String())
	}
}

func TestReprocessQueuesDocument(t *testing.T) {
	queue := &queueFake{}
	handler := newTestRouter(ingestFake{}, nil, readerFake{doc: docFixture()}, exporterFake{}, queue)

	req := httptest.NewRequest(http.MethodPost, "/v1/documents/doc-1/reprocess", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", res.Code)
	}
	if len(queue.published) != 1 || queue.published[0] != "doc-1" {
		t.Fatalf("expected doc-1 published, got %v", queue.published)
	}
}

func TestListRejectsOutOfRangeLimit(t *testing.T) {
	handler := newTestRouter(ingestFake{}, nil, readerFake{doc: docFixture()}, exporterFake{}, nil)

	for _, q := range []string{"limit=0", "limit=-1", "limit=101", "limit=lots"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/documents?"+q, nil)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		if res.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %q, got %d", q, res.Code)
		}
	}
}

func TestExportServesWorkbook(t *testing.T) {
	handler := newTestRouter(ingestFake{}, nil, readerFake{}, exporterFake{out: []byte("PK")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/export", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if got := res.Header().Get("Content-Type"); !strings.Contains(got, "spreadsheetml") {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestTemporaryFailureMapsTo503(t *testing.T) {
	ingest := ingestFake{err: domain.WrapError(domain.ErrTemporary, "classify document", fmt.Errorf("vision unavailable"))}
	handler := newTestRouter(ingest, nil, readerFake{}, exporterFake{}, nil)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "scan.jpg")
	_, _ = part.Write([]byte{0xFF, 0xD8})
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", res.Code)
	}
}
