package extractors

import (
	"bytes"
	"context"
	"fmt"

	"code.sajari.com/docconv"

	"github.com/docsift/docsift/internal/extract"
)

// Docconv adapts code.sajari.com/docconv for binary document formats: PDF,
// Word, OpenDocument, RTF, and images when the OCR build is available. One
// shared instance serves every registered format.
type Docconv struct{}

func (Docconv) Extract(ctx context.Context, data []byte, hint string, cfg extract.Config) (*extract.Result, error) {
	// docconv shells out for some formats; honor cancellation before
	// starting rather than mid-conversion.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := docconv.Convert(bytes.NewReader(data), hint, true)
	if err != nil {
		return nil, fmt.Errorf("convert %s: %w", hint, err)
	}
	meta := make(map[string]string, len(res.Meta)+1)
	for k, v := range res.Meta {
		meta[k] = v
	}
	if cfg.OCRLanguage != "" {
		meta["ocr_language"] = cfg.OCRLanguage
	}
	body := capContent(res.Body, cfg.MaxContentBytes)
	return &extract.Result{
		Content:   body,
		Title:     meta["Title"],
		Format:    hint,
		Metadata:  meta,
		WordCount: extract.CountWords(body),
	}, nil
}
