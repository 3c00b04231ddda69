// Package stages holds the built-in post-processors. Stage names appear in
// warnings and logs, so they stay stable once shipped.
package stages

import (
	"context"
	"fmt"
	"strings"

	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/registry"
)

// Execution order slots. Gaps leave room for callers to interleave their own
// stages without renumbering.
const (
	OrderNormalize = 10
	OrderMetadata  = 20
	OrderWordCount = 30
	OrderSummary   = 40
)

// NormalizeWhitespace trims and collapses whitespace in the content.
type NormalizeWhitespace struct{}

func (NormalizeWhitespace) Apply(_ context.Context, r *extract.Result, _ extract.Config) (*extract.Result, error) {
	out := r.Clone()
	out.Content = extract.NormalizeWhitespace(out.Content)
	return out, nil
}

// MetadataClean drops metadata entries with empty keys or values and trims
// the rest. Malformed metadata is a data-quality problem, not a reason to
// fail an extraction, so this stage registers as best-effort.
type MetadataClean struct{}

func (MetadataClean) Apply(_ context.Context, r *extract.Result, _ extract.Config) (*extract.Result, error) {
	if len(r.Metadata) == 0 {
		return r, nil
	}
	out := r.Clone()
	cleaned := make(map[string]string, len(out.Metadata))
	for k, v := range out.Metadata {
		k = strings.TrimSpace(k)
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		cleaned[k] = v
	}
	out.Metadata = cleaned
	return out, nil
}

// WordCount recomputes word and line counts from the final content so they
// reflect whatever earlier stages did to it. Content assembly going wrong
// here means the result is unusable, hence fatal.
type WordCount struct{}

func (WordCount) Apply(_ context.Context, r *extract.Result, _ extract.Config) (*extract.Result, error) {
	out := r.Clone()
	out.WordCount = extract.CountWords(out.Content)
	if out.Content == "" {
		out.LineCount = 0
	} else {
		out.LineCount = strings.Count(out.Content, "\n") + 1
	}
	return out, nil
}

// RegisterDefaults registers the built-in stages in their standard order.
func RegisterDefaults(reg *registry.Registry) error {
	type binding struct {
		name  string
		proc  extract.PostProcessor
		crit  extract.Criticality
		order int
	}
	for _, b := range []binding{
		{"normalize_whitespace", NormalizeWhitespace{}, extract.BestEffort, OrderNormalize},
		{"metadata_clean", MetadataClean{}, extract.BestEffort, OrderMetadata},
		{"word_count", WordCount{}, extract.Fatal, OrderWordCount},
	} {
		if err := reg.RegisterStage(b.name, b.proc, b.crit, b.order); err != nil {
			return fmt.Errorf("register stage %s: %w", b.name, err)
		}
	}
	return nil
}
