package usecase

import (
	"context"
	"fmt"

	"github.com/mkravets/docvision/internal/core/domain"
	"github.com/mkravets/docvision/internal/core/fields"
	"github.com/mkravets/docvision/internal/core/ports"
)

// CorrectFieldUseCase is the correction workflow: a user-submitted override
// re-enters validation, then upserts the field row with the corrected flag.
type CorrectFieldUseCase struct {
	docs      ports.DocumentRepository
	fields    ports.FieldRepository
	validator *fields.Validator
}

func NewCorrectFieldUseCase(
	docs ports.DocumentRepository,
	fieldRepo ports.FieldRepository,
	validator *fields.Validator,
) *CorrectFieldUseCase {
	if validator == nil {
		validator = fields.NewValidator(fields.DefaultRules(), nil)
	}
	return &CorrectFieldUseCase{docs: docs, fields: fieldRepo, validator: validator}
}

func (uc *CorrectFieldUseCase) Correct(ctx context.Context, documentID, key, value string) (bool, error) {
	if documentID == "" || key == "" {
		return false, domain.WrapError(domain.ErrInvalidInput, "correct field", fmt.Errorf("document id and key are required"))
	}

	if ok, msg := uc.validator.Validate(key, value); !ok {
		return false, domain.WrapError(domain.ErrFieldValidation, "correct field", fmt.Errorf("%s", msg))
	}

	// Rejections above leave the stored value untouched; only a validated
	// value reaches the repository.
	if _, err := uc.docs.GetByID(ctx, documentID); err != nil {
		return false, fmt.Errorf("load document: %w", err)
	}

	created, err := uc.fields.Upsert(ctx, documentID, key, value, true)
	if err != nil {
		return false, fmt.Errorf("upsert field: %w", err)
	}
	return created, nil
}
