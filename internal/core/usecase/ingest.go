package usecase

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkravets/docvision/internal/core/domain"
	"github.com/mkravets/docvision/internal/core/fields"
	"github.com/mkravets/docvision/internal/core/ports"
)

// IngestDocumentUseCase runs the whole submission pipeline synchronously:
// classification, extraction, reply parsing, date normalization, then a
// single transactional write of the document and its field rows.
type IngestDocumentUseCase struct {
	repo       ports.DocumentRepository
	classifier ports.DocumentClassifier
	extractor  ports.FieldExtractor
	pages      ports.PageImager
	codec      ports.ImageCodec
}

func NewIngestDocumentUseCase(
	repo ports.DocumentRepository,
	classifier ports.DocumentClassifier,
	extractor ports.FieldExtractor,
	pages ports.PageImager,
	codec ports.ImageCodec,
) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		repo:       repo,
		classifier: classifier,
		extractor:  extractor,
		pages:      pages,
		codec:      codec,
	}
}

func (uc *IngestDocumentUseCase) Submit(
	ctx context.Context,
	filename, contentType string,
	body io.Reader,
) (*domain.Document, domain.FieldMap, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, nil, fmt.Errorf("read upload: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "read upload", fmt.Errorf("empty file"))
	}

	imageJPEG, err := uc.prepareImage(ctx, filename, contentType, raw)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrInvalidInput, "prepare image", err)
	}

	docType, fieldMap, err := uc.runPipeline(ctx, imageJPEG)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:          uuid.NewString(),
		Filename:    filename,
		ContentType: contentType,
		DocType:     docType,
		UploadedAt:  now,
		UpdatedAt:   now,
	}

	rows := make([]domain.Field, 0, len(fieldMap))
	for k, v := range fieldMap {
		rows = append(rows, domain.Field{DocumentID: doc.ID, Key: k, Value: v, UpdatedAt: now})
	}

	if err := uc.repo.CreateWithFields(ctx, doc, raw, rows); err != nil {
		return nil, nil, fmt.Errorf("persist document: %w", err)
	}
	return doc, fieldMap, nil
}

// runPipeline is the stage sequence shared by submission and reprocessing.
// Extraction is strictly ordered after classification: the instruction
// template depends on the label.
func (uc *IngestDocumentUseCase) runPipeline(ctx context.Context, imageJPEG []byte) (domain.DocumentType, domain.FieldMap, error) {
	docType, err := uc.classifier.Classify(ctx, imageJPEG)
	if err != nil {
		return domain.TypeUnknown, nil, fmt.Errorf("classify document: %w", err)
	}

	reply, err := uc.extractor.Extract(ctx, imageJPEG, docType)
	if err != nil {
		return docType, nil, fmt.Errorf("extract fields: %w", err)
	}

	result := fields.ParseReply(reply)
	fieldMap := result.Fields
	fields.NormalizeDates(fieldMap)

	// Unstructured replies still get persisted: the raw text lands under its
	// reserved key so nothing the model produced is lost.
	if len(fieldMap) == 0 && result.Raw != "" {
		fieldMap = domain.FieldMap{domain.RawOutputKey: result.Raw}
	}
	return docType, fieldMap, nil
}

func (uc *IngestDocumentUseCase) prepareImage(ctx context.Context, filename, contentType string, raw []byte) ([]byte, error) {
	if isPDF(filename, contentType) {
		page, err := uc.pages.FirstPageImage(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("render pdf page: %w", err)
		}
		raw = page
	}
	jpeg, err := uc.codec.ToJPEG(raw)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return jpeg, nil
}

func isPDF(filename, contentType string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "application/pdf" {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
