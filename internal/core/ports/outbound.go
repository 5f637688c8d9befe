package ports

import (
	"context"

	"github.com/mkravets/docvision/internal/core/domain"
)

// DocumentRepository persists document records and their field rows.
// CreateWithFields commits the document and all rows as one unit.
type DocumentRepository interface {
	CreateWithFields(ctx context.Context, doc *domain.Document, content []byte, fields []domain.Field) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetContent(ctx context.Context, id string) (*domain.Document, []byte, error)
	List(ctx context.Context, limit int) ([]domain.Document, error)
	UpdateType(ctx context.Context, id string, docType domain.DocumentType) error
}

// FieldRepository reads and mutates field rows for a document.
type FieldRepository interface {
	ListByDocument(ctx context.Context, documentID string) ([]domain.Field, error)
	// Upsert writes a correction: update in place when the (document, key)
	// row exists, insert otherwise. Created reports which happened.
	Upsert(ctx context.Context, documentID, key, value string, corrected bool) (created bool, err error)
	// ReplaceExtracted swaps the extracted field set for a document while
	// preserving rows a human already corrected.
	ReplaceExtracted(ctx context.Context, documentID string, fields []domain.Field) error
}

// DocumentClassifier maps a prepared document image to a type label.
// Only transport/service failures error; unrecognized replies map to unknown.
type DocumentClassifier interface {
	Classify(ctx context.Context, imageJPEG []byte) (domain.DocumentType, error)
}

// FieldExtractor asks the vision model for document fields using the
// type-specific instruction and returns the raw reply untouched.
type FieldExtractor interface {
	Extract(ctx context.Context, imageJPEG []byte, docType domain.DocumentType) (string, error)
}

// PageImager turns the first page of a PDF into a single image.
type PageImager interface {
	FirstPageImage(ctx context.Context, pdf []byte) ([]byte, error)
}

// ImageCodec re-encodes an uploaded image to the compressed representation
// sent to the vision model.
type ImageCodec interface {
	ToJPEG(data []byte) ([]byte, error)
}

// MessageQueue publishes/consumes reprocess requests.
type MessageQueue interface {
	PublishReprocess(ctx context.Context, documentID string) error
	SubscribeReprocess(ctx context.Context, handler func(context.Context, string) error) error
}
