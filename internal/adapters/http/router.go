package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mkravets/docvision/internal/core/domain"
	"github.com/mkravets/docvision/internal/core/ports"
	"github.com/mkravets/docvision/internal/observability/metrics"
)

const (
	defaultListLimit = 5
	maxListLimit     = 100
)

type Router struct {
	ingest    ports.DocumentIngestor
	corrector ports.FieldCorrector
	reader    ports.DocumentReader
	exporter  ports.DocumentExporter
	queue     ports.MessageQueue

	metrics *metrics.HTTPServerMetrics
	service string

	maxUploadBytes int64
	listLimit      int
}

func NewRouter(
	ingest ports.DocumentIngestor,
	corrector ports.FieldCorrector,
	reader ports.DocumentReader,
	exporter ports.DocumentExporter,
	queue ports.MessageQueue,
	serverMetrics *metrics.HTTPServerMetrics,
	service string,
	maxUploadBytes int64,
	listLimit int,
) *Router {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 20 << 20
	}
	if listLimit <= 0 || listLimit > maxListLimit {
		listLimit = defaultListLimit
	}
	return &Router{
		ingest:         ingest,
		corrector:      corrector,
		reader:         reader,
		exporter:       exporter,
		queue:          queue,
		metrics:        serverMetrics,
		service:        service,
		maxUploadBytes: maxUploadBytes,
		listLimit:      listLimit,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/documents", rt.handleDocuments)
	mux.HandleFunc("/v1/documents/", rt.handleDocumentSubtree)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) handleDocuments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadDocument(w, r)
	case http.MethodGet:
		rt.listDocuments(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

// handleDocumentSubtree dispatches everything below /v1/documents/:
// export, {id}, {id}/content, {id}/reprocess, and {id}/fields/{key}.
func (rt *Router) handleDocumentSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/documents/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	if rest == "export" {
		rt.exportDocuments(w, r)
		return
	}

	segments := strings.Split(rest, "/")
	id := segments[0]

	switch {
	case len(segments) == 1:
		rt.getDocument(w, r, id)
	case len(segments) == 2 && segments[1] == "content":
		rt.getDocumentContent(w, r, id)
	case len(segments) == 2 && segments[1] == "reprocess":
		rt.reprocessDocument(w, r, id)
	case len(segments) == 3 && segments[1] == "fields" && segments[2] != "":
		rt.correctField(w, r, id, segments[2])
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, fieldMap, err := rt.ingest.Submit(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordDocument(rt.service, string(doc.DocType), "processed")
		outcome := "structured"
		if _, ok := fieldMap[domain.RawOutputKey]; ok && len(fieldMap) == 1 {
			outcome = "unstructured"
		}
		rt.metrics.RecordParseOutcome(rt.service, outcome)
	}
	writeJSON(w, http.StatusCreated, uploadResponse(doc, fieldMap))
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	limit, ok := rt.parseLimit(w, r)
	if !ok {
		return
	}

	docs, fieldsByDoc, err := rt.reader.List(r.Context(), limit)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, documentResponseFrom(&doc, fieldsByDoc[doc.ID]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": out})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	doc, fieldRows, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponseFrom(doc, fieldRows))
}

func (rt *Router) getDocumentContent(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	doc, content, err := rt.reader.GetContent(r.Context(), id)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (rt *Router) reprocessDocument(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	// Existence check up front so callers get 404 instead of a silently
	// dropped queue message.
	if _, _, err := rt.reader.GetByID(r.Context(), id); err != nil {
		rt.writeError(w, err)
		return
	}

	if err := rt.queue.PublishReprocess(r.Context(), id); err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "document_id": id})
}

func (rt *Router) correctField(w http.ResponseWriter, r *http.Request, id, key string) {
	if r.Method != http.MethodPut {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	created, err := rt.corrector.Correct(r.Context(), id, key, req.Value)
	if err != nil {
		if rt.metrics != nil && domain.IsKind(err, domain.ErrFieldValidation) {
			rt.metrics.RecordCorrection(rt.service, "rejected")
		}
		rt.writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	if rt.metrics != nil {
		rt.metrics.RecordCorrection(rt.service, "accepted")
	}
	writeJSON(w, status, map[string]any{
		"document_id": id,
		"key":         key,
		"value":       req.Value,
		"corrected":   true,
		"created":     created,
	})
}

func (rt *Router) exportDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit, ok := rt.parseLimit(w, r)
	if !ok {
		return
	}

	out, err := rt.exporter.ExportXLSX(r.Context(), limit)
	if err != nil {
		rt.writeError(w, err)
		return
	}

	filename := "documents-" + time.Now().UTC().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (rt *Router) parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	limit := rt.listLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > maxListLimit {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("limit must be between 1 and %d", maxListLimit)})
			return 0, false
		}
		limit = parsed
	}
	return limit, true
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type fieldValue struct {
	Value     string `json:"value"`
	Corrected bool   `json:"corrected"`
}

type documentResponse struct {
	ID           string                `json:"id"`
	Filename     string                `json:"filename"`
	ContentType  string                `json:"content_type"`
	DocumentType string                `json:"document_type"`
	UploadedAt   time.Time             `json:"uploaded_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Fields       map[string]fieldValue `json:"fields"`
}

func documentResponseFrom(doc *domain.Document, fieldRows []domain.Field) documentResponse {
	out := documentResponse{
		ID:           doc.ID,
		Filename:     doc.Filename,
		ContentType:  doc.ContentType,
		DocumentType: string(doc.DocType),
		UploadedAt:   doc.UploadedAt,
		UpdatedAt:    doc.UpdatedAt,
		Fields:       make(map[string]fieldValue, len(fieldRows)),
	}
	for _, f := range fieldRows {
		out.Fields[f.Key] = fieldValue{Value: f.Value, Corrected: f.Corrected}
	}
	return out
}

func uploadResponse(doc *domain.Document, fieldMap domain.FieldMap) documentResponse {
	out := documentResponse{
		ID:           doc.ID,
		Filename:     doc.Filename,
		ContentType:  doc.ContentType,
		DocumentType: string(doc.DocType),
		UploadedAt:   doc.UploadedAt,
		UpdatedAt:    doc.UpdatedAt,
		Fields:       make(map[string]fieldValue, len(fieldMap)),
	}
	for k, v := range fieldMap {
		out.Fields[k] = fieldValue{Value: v}
	}
	return out
}
