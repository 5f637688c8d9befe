package pdfpage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Extractor pulls the scanned page image out of an uploaded PDF. Identity
// documents arrive as image-only scans, so the first embedded image stream is
// the page; PDFs without any image stream are rejected as input errors.
type Extractor struct {
	conf *model.Configuration
}

func NewExtractor() *Extractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Extractor{conf: conf}
}

func (e *Extractor) FirstPageImage(ctx context.Context, pdf []byte) ([]byte, error) {
	if len(pdf) == 0 {
		return nil, fmt.Errorf("empty pdf")
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(pdf), e.conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		images, err := pdfcpu.ExtractPageImages(pdfCtx, pageNr, false)
		if err != nil {
			return nil, fmt.Errorf("extract page %d images: %w", pageNr, err)
		}
		for _, img := range images {
			data, err := io.ReadAll(img)
			if err != nil {
				return nil, fmt.Errorf("read page %d image: %w", pageNr, err)
			}
			if len(data) > 0 {
				return data, nil
			}
		}
	}

	return nil, fmt.Errorf("no page image found in pdf")
}
