package ports

import (
	"context"
	"io"

	"github.com/mkravets/docvision/internal/core/domain"
)

// DocumentIngestor is the inbound contract for the synchronous submission
// pipeline: classify, extract, parse, normalize, persist.
type DocumentIngestor interface {
	Submit(ctx context.Context, filename, contentType string, body io.Reader) (*domain.Document, domain.FieldMap, error)
}

// FieldCorrector is the inbound contract for the correction workflow.
// Created reports whether the correction inserted a new field row.
type FieldCorrector interface {
	Correct(ctx context.Context, documentID, key, value string) (created bool, err error)
}

// DocumentReader is the inbound read model for documents and their fields.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, []domain.Field, error)
	List(ctx context.Context, limit int) ([]domain.Document, map[string][]domain.Field, error)
	GetContent(ctx context.Context, id string) (*domain.Document, []byte, error)
}

// DocumentReprocessor re-runs classification and extraction for a stored
// document, consumed by the queue worker.
type DocumentReprocessor interface {
	ReprocessByID(ctx context.Context, documentID string) error
}

// DocumentExporter renders persisted documents and fields as an XLSX workbook.
type DocumentExporter interface {
	ExportXLSX(ctx context.Context, limit int) ([]byte, error)
}
