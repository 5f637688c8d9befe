package usecase

import (
	"context"
	"fmt"

	"github.com/mkravets/docvision/internal/core/domain"
	"github.com/mkravets/docvision/internal/core/ports"
)

// ReadDocumentsUseCase serves the listing/retrieval entry points.
type ReadDocumentsUseCase struct {
	docs   ports.DocumentRepository
	fields ports.FieldRepository
}

func NewReadDocumentsUseCase(docs ports.DocumentRepository, fieldRepo ports.FieldRepository) *ReadDocumentsUseCase {
	return &ReadDocumentsUseCase{docs: docs, fields: fieldRepo}
}

func (uc *ReadDocumentsUseCase) GetByID(ctx context.Context, id string) (*domain.Document, []domain.Field, error) {
	doc, err := uc.docs.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document: %w", err)
	}
	rows, err := uc.fields.ListByDocument(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list fields: %w", err)
	}
	return doc, rows, nil
}

func (uc *ReadDocumentsUseCase) List(ctx context.Context, limit int) ([]domain.Document, map[string][]domain.Field, error) {
	docs, err := uc.docs.List(ctx, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("list documents: %w", err)
	}

	byDoc := make(map[string][]domain.Field, len(docs))
	for _, d := range docs {
		rows, err := uc.fields.ListByDocument(ctx, d.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("list fields for %s: %w", d.ID, err)
		}
		byDoc[d.ID] = rows
	}
	return docs, byDoc, nil
}

func (uc *ReadDocumentsUseCase) GetContent(ctx context.Context, id string) (*domain.Document, []byte, error) {
	doc, content, err := uc.docs.GetContent(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document content: %w", err)
	}
	return doc, content, nil
}
