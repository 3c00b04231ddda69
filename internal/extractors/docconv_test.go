package extractors

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/docsift/docsift/internal/extract"
)

func pdfFixture(t *testing.T, text string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(190, 8, text, "", "L", false)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build pdf fixture: %v", err)
	}
	return buf.Bytes()
}

func TestDocconv_PDF(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skip("pdftotext not installed; skipping PDF conversion test")
	}
	data := pdfFixture(t, "quarterly totals for the northern region")
	r, err := Docconv{}.Extract(context.Background(), data, "application/pdf", extract.Config{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(r.Content, "quarterly totals") {
		t.Fatalf("expected pdf text in content, got %q", r.Content)
	}
	if r.Format != "application/pdf" {
		t.Fatalf("unexpected format %q", r.Format)
	}
}

func TestDocconv_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Docconv{}.Extract(ctx, []byte("%PDF-1.4"), "application/pdf", extract.Config{})
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestDocconv_OCRLanguageRecorded(t *testing.T) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		t.Skip("pdftotext not installed; skipping PDF conversion test")
	}
	data := pdfFixture(t, "hello")
	r, err := Docconv{}.Extract(context.Background(), data, "application/pdf", extract.Config{OCRLanguage: "eng"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if r.Metadata["ocr_language"] != "eng" {
		t.Fatalf("expected ocr_language metadata, got %v", r.Metadata)
	}
}
