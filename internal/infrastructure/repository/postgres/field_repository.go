package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkravets/docvision/internal/core/domain"
)

type FieldRepository struct {
	db *sql.DB
}

func NewFieldRepository(db *sql.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

func (r *FieldRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.Field, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT document_id, key, value, corrected, updated_at
FROM fields
WHERE document_id = $1
ORDER BY key
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	var fields []domain.Field
	for rows.Next() {
		var f domain.Field
		if err := rows.Scan(&f.DocumentID, &f.Key, &f.Value, &f.Corrected, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan field: %w", err)
		}
		fields = append(fields, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fields: %w", err)
	}
	return fields, nil
}

// Upsert writes one field row keyed by (document_id, key). The returned flag
// distinguishes a fresh insert from an update of an existing row.
func (r *FieldRepository) Upsert(ctx context.Context, documentID, key, value string, corrected bool) (bool, error) {
	row := r.db.QueryRowContext(ctx, `
INSERT INTO fields (document_id, key, value, corrected, updated_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (document_id, key)
DO UPDATE SET value = EXCLUDED.value, corrected = EXCLUDED.corrected, updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0)
`, documentID, key, value, corrected, time.Now().UTC())

	var created bool
	if err := row.Scan(&created); err != nil {
		return false, fmt.Errorf("upsert field: %w", err)
	}
	return created, nil
}

// ReplaceExtracted swaps the machine-extracted field set for a document.
// Rows flagged corrected are left alone, and an incoming key that collides
// with a corrected row is dropped rather than written over it.
func (r *FieldRepository) ReplaceExtracted(ctx context.Context, documentID string, fields []domain.Field) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
DELETE FROM fields
WHERE document_id = $1 AND corrected = FALSE
`, documentID); err != nil {
		return fmt.Errorf("delete extracted fields: %w", err)
	}

	for _, f := range fields {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO fields (document_id, key, value, corrected, updated_at)
VALUES ($1,$2,$3,FALSE,$4)
ON CONFLICT (document_id, key) DO NOTHING
`, documentID, f.Key, f.Value, f.UpdatedAt); err != nil {
			return fmt.Errorf("insert field %s: %w", f.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
