package extract

import (
	"context"
	"sort"
	"strings"
)

// Request describes a single extraction. Exactly one of Data or Path should be
// set; Path sources are fingerprinted by file identity (path, size, mtime)
// instead of content so large files are not hashed twice.
type Request struct {
	// Data holds the raw document bytes for in-memory sources.
	Data []byte
	// Path points at a file-backed source.
	Path string
	// Format is the declared or detected format identifier, e.g. "text/plain"
	// or "application/pdf". Detection itself happens upstream.
	Format string
	// Config carries per-request extraction options.
	Config Config
}

// Config is an immutable value describing how to extract. It participates in
// cache fingerprints, so every field must serialize deterministically.
type Config struct {
	// OCRLanguage selects the tesseract language pack for image inputs.
	OCRLanguage string `yaml:"ocrLanguage" json:"ocrLanguage"`
	// MaxContentBytes truncates extracted content beyond this size. Zero
	// disables truncation.
	MaxContentBytes int `yaml:"maxContentBytes" json:"maxContentBytes"`
	// LanguageHint is passed through to extractors and stages that do
	// language-aware work.
	LanguageHint string `yaml:"languageHint" json:"languageHint"`
}

// Table is one detected table as rows of cell strings.
type Table struct {
	Name string
	Rows [][]string
}

// Image is an embedded image reference discovered during extraction. Data is
// left nil when the source format only carries a reference.
type Image struct {
	Name     string
	MimeType string
	Data     []byte
}

// Result is the outcome of extraction plus any post-processing. Results are
// treated as immutable once returned: pipeline stages derive new values via
// Clone rather than mutating in place, so a cached result can be shared
// across callers safely.
type Result struct {
	Content    string
	Title      string
	Format     string
	Headers    []string
	Links      []string
	CodeBlocks []string
	Tables     []Table
	Images     []Image
	Metadata   map[string]string
	WordCount  int
	LineCount  int
	// Warnings collects best-effort stage failures that were downgraded
	// rather than propagated.
	Warnings []string
}

// Clone returns a deep copy suitable for modification by a pipeline stage.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	out.Headers = append([]string(nil), r.Headers...)
	out.Links = append([]string(nil), r.Links...)
	out.CodeBlocks = append([]string(nil), r.CodeBlocks...)
	out.Warnings = append([]string(nil), r.Warnings...)
	if r.Tables != nil {
		out.Tables = make([]Table, len(r.Tables))
		for i, t := range r.Tables {
			rows := make([][]string, len(t.Rows))
			for j, row := range t.Rows {
				rows[j] = append([]string(nil), row...)
			}
			out.Tables[i] = Table{Name: t.Name, Rows: rows}
		}
	}
	if r.Images != nil {
		out.Images = make([]Image, len(r.Images))
		for i, img := range r.Images {
			out.Images[i] = Image{Name: img.Name, MimeType: img.MimeType, Data: append([]byte(nil), img.Data...)}
		}
	}
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// WithWarning returns a copy of r with one warning appended.
func (r *Result) WithWarning(w string) *Result {
	out := r.Clone()
	out.Warnings = append(out.Warnings, w)
	return out
}

// Extractor converts raw document bytes into a Result. Implementations must
// be deterministic for identical input and config, and safe for concurrent
// use: one shared instance serves all requests for its format.
type Extractor interface {
	Extract(ctx context.Context, data []byte, hint string, cfg Config) (*Result, error)
}

// ExtractorFunc adapts a plain function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, data []byte, hint string, cfg Config) (*Result, error)

func (f ExtractorFunc) Extract(ctx context.Context, data []byte, hint string, cfg Config) (*Result, error) {
	return f(ctx, data, hint, cfg)
}

// PostProcessor transforms an extraction result after initial extraction.
// Stages must not mutate their input; derive changes via Clone.
type PostProcessor interface {
	Apply(ctx context.Context, r *Result, cfg Config) (*Result, error)
}

// PostProcessorFunc adapts a plain function to the PostProcessor interface.
type PostProcessorFunc func(ctx context.Context, r *Result, cfg Config) (*Result, error)

func (f PostProcessorFunc) Apply(ctx context.Context, r *Result, cfg Config) (*Result, error) {
	return f(ctx, r, cfg)
}

// Criticality decides how a stage failure is handled by the pipeline.
type Criticality int

const (
	// BestEffort failures become warnings on the result; the pipeline
	// continues with the pre-stage result unchanged.
	BestEffort Criticality = iota
	// Fatal failures abort the pipeline; no partial result is returned.
	Fatal
)

func (c Criticality) String() string {
	if c == Fatal {
		return "fatal"
	}
	return "best-effort"
}

// Stage is a named, ordered post-processing step.
type Stage struct {
	Name        string
	Processor   PostProcessor
	Criticality Criticality
	// Order fixes relative position; ties fall back to registration sequence.
	Order int
}

// SortStages orders stages deterministically by (Order, sequence). seq must
// be parallel to stages and records registration order.
func SortStages(stages []Stage, seq []int) []Stage {
	idx := make([]int, len(stages))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if stages[idx[a]].Order != stages[idx[b]].Order {
			return stages[idx[a]].Order < stages[idx[b]].Order
		}
		return seq[idx[a]] < seq[idx[b]]
	})
	out := make([]Stage, len(stages))
	for i, j := range idx {
		out[i] = stages[j]
	}
	return out
}

// CountWords reports whitespace-separated token count; shared by extractors
// and the word_count stage so both agree on the definition.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// NormalizeWhitespace trims each line, collapses internal whitespace runs to
// single spaces, and keeps at most one consecutive blank line.
func NormalizeWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if len(out) > 0 && out[len(out)-1] == "" {
				continue
			}
			out = append(out, "")
			continue
		}
		out = append(out, collapseSpaces(trimmed))
	}
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	for len(out) > 0 && out[0] == "" {
		out = out[1:]
	}
	return strings.Join(out, "\n")
}

func collapseSpaces(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return b.String()
}
