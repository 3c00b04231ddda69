// Package extractors holds the built-in format extractors. Each one is a
// thin adapter from a document format to the shared Result shape; the heavy
// parsing is delegated to format libraries.
package extractors

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"

	"github.com/docsift/docsift/internal/extract"
)

// PlainText extracts text/plain sources, decoding legacy charsets to UTF-8.
type PlainText struct{}

func (PlainText) Extract(_ context.Context, data []byte, hint string, cfg extract.Config) (*extract.Result, error) {
	text, err := decodeToUTF8(data, hint)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	text = capContent(text, cfg.MaxContentBytes)
	lines := 0
	if text != "" {
		lines = strings.Count(text, "\n") + 1
	}
	return &extract.Result{
		Content:   text,
		Format:    "text/plain",
		WordCount: extract.CountWords(text),
		LineCount: lines,
	}, nil
}

// decodeToUTF8 sniffs the encoding from content and the optional
// content-type hint and transforms to UTF-8. Already-valid UTF-8 passes
// through untouched.
func decodeToUTF8(data []byte, hint string) (string, error) {
	enc, name, _ := charset.DetermineEncoding(data, hint)
	if name == "utf-8" {
		return string(data), nil
	}
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// capContent truncates s to at most max bytes on a rune boundary. Zero max
// disables truncation.
func capContent(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := s[:max]
	// Back up over a rune split by the byte cut.
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut
}
