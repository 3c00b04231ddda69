// Package registry holds the shared mapping from format identifiers to
// extractors and the ordered set of post-processing stages. It is read-mostly:
// registration happens at startup, lookups happen on every extraction.
package registry

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/docsift/docsift/internal/extract"
)

var stageNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Registry maps format identifiers to extractor instances and stage names to
// post-processors. All methods are safe for concurrent use; readers do not
// block each other.
type Registry struct {
	mu       sync.RWMutex
	formats  map[string]extract.Extractor
	stages   []extract.Stage
	stageSeq []int
	names    map[string]struct{}
	nextSeq  int
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		formats: make(map[string]extract.Extractor),
		names:   make(map[string]struct{}),
	}
}

// Register binds an extractor to a format identifier. A second registration
// for the same identifier fails with ErrDuplicateRegistration unless
// override is true, in which case the previous binding is replaced.
func (r *Registry) Register(format string, ex extract.Extractor, override bool) error {
	if format == "" {
		return fmt.Errorf("empty format identifier")
	}
	if ex == nil {
		return fmt.Errorf("nil extractor for %q", format)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.formats[format]; exists && !override {
		return fmt.Errorf("format %q: %w", format, extract.ErrDuplicateRegistration)
	}
	r.formats[format] = ex
	return nil
}

// RegisterStage adds a named post-processing stage. Names must be lowercase
// snake_case so they read cleanly in warnings and logs. Name collisions fail
// with ErrDuplicateStage.
func (r *Registry) RegisterStage(name string, p extract.PostProcessor, crit extract.Criticality, order int) error {
	if !stageNameRe.MatchString(name) {
		return fmt.Errorf("invalid stage name %q: must be lowercase snake_case starting with a letter", name)
	}
	if p == nil {
		return fmt.Errorf("nil processor for stage %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.names[name]; exists {
		return fmt.Errorf("stage %q: %w", name, extract.ErrDuplicateStage)
	}
	r.names[name] = struct{}{}
	r.stages = append(r.stages, extract.Stage{Name: name, Processor: p, Criticality: crit, Order: order})
	r.stageSeq = append(r.stageSeq, r.nextSeq)
	r.nextSeq++
	return nil
}

// Lookup returns the extractor bound to a format identifier.
func (r *Registry) Lookup(format string) (extract.Extractor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.formats[format]
	if !ok {
		return nil, fmt.Errorf("format %q: %w", format, extract.ErrUnsupportedFormat)
	}
	return ex, nil
}

// Formats returns the registered format identifiers, for diagnostics.
func (r *Registry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.formats))
	for f := range r.formats {
		out = append(out, f)
	}
	return out
}

// Stages returns the registered post-processors in execution order:
// ascending Order, registration sequence breaking ties. The returned slice
// is a copy; callers may not observe later registrations through it.
func (r *Registry) Stages() []extract.Stage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return extract.SortStages(r.stages, r.stageSeq)
}

// Reset drops all registrations. It exists for test isolation; production
// code populates a registry once and never resets it.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.formats = make(map[string]extract.Extractor)
	r.stages = nil
	r.stageSeq = nil
	r.names = make(map[string]struct{})
	r.nextSeq = 0
}
