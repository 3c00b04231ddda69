package extractors

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/docsift/docsift/internal/extract"
)

func xlsxFixture(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)
	cells := map[string]string{
		"A1": "name", "B1": "amount",
		"A2": "alpha", "B2": "10",
		"A3": "beta", "B3": "20",
	}
	for cell, v := range cells {
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatalf("set cell %s: %v", cell, err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestSpreadsheet_ExtractsTables(t *testing.T) {
	data := xlsxFixture(t)
	r, err := Spreadsheet{}.Extract(context.Background(), data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", extract.Config{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(r.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(r.Tables))
	}
	rows := r.Tables[0].Rows
	if len(rows) != 3 || rows[0][0] != "name" || rows[2][1] != "20" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if !strings.Contains(r.Content, "alpha\t10") {
		t.Fatalf("expected flattened content, got %q", r.Content)
	}
}

func TestSpreadsheet_RejectsGarbage(t *testing.T) {
	_, err := Spreadsheet{}.Extract(context.Background(), []byte("not a workbook"), "", extract.Config{})
	if err == nil {
		t.Fatal("expected error for invalid workbook bytes")
	}
}
