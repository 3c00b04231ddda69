package extractors

import (
	"fmt"

	"github.com/docsift/docsift/internal/registry"
)

// RegisterDefaults binds the built-in extractors to their format
// identifiers. It fails fast on the first registration error so a broken
// setup is caught at startup.
func RegisterDefaults(reg *registry.Registry) error {
	docconvFormats := []string{
		"application/pdf",
		"application/msword",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.oasis.opendocument.text",
		"application/rtf",
		"image/png",
		"image/jpeg",
		"image/tiff",
	}
	if err := reg.Register("text/plain", PlainText{}, false); err != nil {
		return fmt.Errorf("register text/plain: %w", err)
	}
	if err := reg.Register("text/markdown", Markdown{}, false); err != nil {
		return fmt.Errorf("register text/markdown: %w", err)
	}
	for _, f := range []string{"text/html", "application/xhtml+xml"} {
		if err := reg.Register(f, HTML{}, false); err != nil {
			return fmt.Errorf("register %s: %w", f, err)
		}
	}
	if err := reg.Register("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Spreadsheet{}, false); err != nil {
		return fmt.Errorf("register xlsx: %w", err)
	}
	dc := Docconv{}
	for _, f := range docconvFormats {
		if err := reg.Register(f, dc, false); err != nil {
			return fmt.Errorf("register %s: %w", f, err)
		}
	}
	return nil
}
