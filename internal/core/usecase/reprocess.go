package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/mkravets/docvision/internal/core/domain"
	"github.com/mkravets/docvision/internal/core/ports"
)

// ReprocessDocumentUseCase re-runs the extraction pipeline against a stored
// blob. Extracted field rows are replaced; rows a human corrected survive.
type ReprocessDocumentUseCase struct {
	ingest *IngestDocumentUseCase
	docs   ports.DocumentRepository
	fields ports.FieldRepository
}

func NewReprocessDocumentUseCase(
	ingest *IngestDocumentUseCase,
	docs ports.DocumentRepository,
	fieldRepo ports.FieldRepository,
) *ReprocessDocumentUseCase {
	return &ReprocessDocumentUseCase{ingest: ingest, docs: docs, fields: fieldRepo}
}

func (uc *ReprocessDocumentUseCase) ReprocessByID(ctx context.Context, documentID string) error {
	doc, content, err := uc.docs.GetContent(ctx, documentID)
	if err != nil {
		return fmt.Errorf("load document content: %w", err)
	}

	imageJPEG, err := uc.ingest.prepareImage(ctx, doc.Filename, doc.ContentType, content)
	if err != nil {
		return domain.WrapError(domain.ErrInvalidInput, "prepare image", err)
	}

	docType, fieldMap, err := uc.ingest.runPipeline(ctx, imageJPEG)
	if err != nil {
		return err
	}

	if docType != doc.DocType {
		if err := uc.docs.UpdateType(ctx, documentID, docType); err != nil {
			return fmt.Errorf("update document type: %w", err)
		}
	}

	now := time.Now().UTC()
	rows := make([]domain.Field, 0, len(fieldMap))
	for k, v := range fieldMap {
		rows = append(rows, domain.Field{DocumentID: documentID, Key: k, Value: v, UpdatedAt: now})
	}
	if err := uc.fields.ReplaceExtracted(ctx, documentID, rows); err != nil {
		return fmt.Errorf("replace extracted fields: %w", err)
	}
	return nil
}
