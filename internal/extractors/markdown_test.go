package extractors

import (
	"context"
	"testing"

	"github.com/docsift/docsift/internal/extract"
)

func TestMarkdown_Structure(t *testing.T) {
	src := "# Title\n\nSome intro with a [link](https://example.com/page \"t\").\n\n## Section\n\n```go\nfmt.Println(\"hi\")\n```\n"
	r, err := Markdown{}.Extract(context.Background(), []byte(src), "text/markdown", extract.Config{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if r.Title != "Title" {
		t.Fatalf("expected title from first h1, got %q", r.Title)
	}
	if len(r.Headers) != 2 || r.Headers[0] != "Title" || r.Headers[1] != "Section" {
		t.Fatalf("unexpected headers: %v", r.Headers)
	}
	if len(r.Links) != 1 || r.Links[0] != "https://example.com/page" {
		t.Fatalf("unexpected links: %v", r.Links)
	}
	if len(r.CodeBlocks) != 1 || r.CodeBlocks[0] != "fmt.Println(\"hi\")" {
		t.Fatalf("unexpected code blocks: %v", r.CodeBlocks)
	}
}

func TestMarkdown_HeadersInsideFenceIgnored(t *testing.T) {
	src := "```\n# not a header\n```\n# Real\n"
	r, err := Markdown{}.Extract(context.Background(), []byte(src), "text/markdown", extract.Config{})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(r.Headers) != 1 || r.Headers[0] != "Real" {
		t.Fatalf("fence content must not produce headers: %v", r.Headers)
	}
}
