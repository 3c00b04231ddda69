package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docsift/docsift/internal/extract"
)

// Spreadsheet extracts xlsx workbooks into tables, one per sheet, plus a
// flattened tab-separated content rendering.
type Spreadsheet struct{}

func (Spreadsheet) Extract(ctx context.Context, data []byte, _ string, cfg extract.Config) (*extract.Result, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	var (
		tables []extract.Table
		body   strings.Builder
	)
	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		tables = append(tables, extract.Table{Name: sheet, Rows: rows})
		body.WriteString(sheet)
		body.WriteString("\n")
		for _, row := range rows {
			body.WriteString(strings.Join(row, "\t"))
			body.WriteString("\n")
		}
		body.WriteString("\n")
	}
	content := capContent(strings.TrimRight(body.String(), "\n"), cfg.MaxContentBytes)
	props, _ := f.GetDocProps()
	meta := map[string]string{}
	if props != nil {
		if props.Creator != "" {
			meta["creator"] = props.Creator
		}
		if props.Title != "" {
			meta["title"] = props.Title
		}
	}
	return &extract.Result{
		Content:   content,
		Format:    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Tables:    tables,
		Metadata:  meta,
		WordCount: extract.CountWords(content),
	}, nil
}
