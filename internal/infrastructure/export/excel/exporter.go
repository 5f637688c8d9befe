package excel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkravets/docvision/internal/core/ports"
)

// Exporter produces an XLSX workbook of stored documents and their fields,
// one field row per line so corrections stay visible next to the extraction.
type Exporter struct {
	docs   ports.DocumentRepository
	fields ports.FieldRepository
	logger *slog.Logger
}

func NewExporter(docs ports.DocumentRepository, fieldRepo ports.FieldRepository, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{docs: docs, fields: fieldRepo, logger: logger}
}

func (e *Exporter) ExportXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	docs, err := e.docs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Documents"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("new sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{
		"Document ID",
		"Filename",
		"Document Type",
		"Uploaded At",
		"Field",
		"Value",
		"Corrected",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	totalFields := 0
	for _, doc := range docs {
		fieldRows, err := e.fields.ListByDocument(ctx, doc.ID)
		if err != nil {
			return nil, fmt.Errorf("list fields for %s: %w", doc.ID, err)
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if len(fieldRows) == 0 {
			write(1, doc.ID)
			write(2, doc.Filename)
			write(3, string(doc.DocType))
			write(4, doc.UploadedAt.Format("2006-01-02 15:04:05"))
			row++
			continue
		}

		for _, fr := range fieldRows {
			write(1, doc.ID)
			write(2, doc.Filename)
			write(3, string(doc.DocType))
			write(4, doc.UploadedAt.Format("2006-01-02 15:04:05"))
			write(5, fr.Key)
			write(6, fr.Value)
			write(7, fr.Corrected)
			row++
			totalFields++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 38)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 16)
	_ = f.SetColWidth(sheet, "D", "D", 20)
	_ = f.SetColWidth(sheet, "E", "E", 20)
	_ = f.SetColWidth(sheet, "F", "F", 40)
	_ = f.SetColWidth(sheet, "G", "G", 10)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export.xlsx.ok",
		"documents", len(docs),
		"fields", totalFields,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
