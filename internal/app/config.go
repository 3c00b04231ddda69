package app

import (
	"time"

	"github.com/docsift/docsift/internal/extract"
)

// Config holds runtime configuration for the extraction service.
type Config struct {
	// CacheCapacity bounds the in-memory result cache (entries).
	CacheCapacity int
	// CacheDBPath, when set, enables the persistent SQLite backing store.
	CacheDBPath string
	// CacheMaxAge prunes persisted entries older than this at startup.
	// Zero keeps everything.
	CacheMaxAge time.Duration
	// Workers caps batch parallelism. Zero means GOMAXPROCS.
	Workers int
	// RequestTimeout bounds each extraction (extractor call plus pipeline).
	// Zero disables the per-request deadline.
	RequestTimeout time.Duration
	// MaxSourceBytes rejects sources larger than this with
	// ErrResourceExhausted before any bytes are parsed. Zero disables the
	// limit.
	MaxSourceBytes int64

	// LLM settings for the optional summary stage; the stage registers only
	// when both BaseURL-or-key and Model are present.
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Extraction is the default per-request config applied when a request
	// carries the zero value.
	Extraction extract.Config

	// SkipDefaults leaves the registry empty so embedders can register
	// their own extractors and stages from scratch.
	SkipDefaults bool

	Verbose bool
}

const (
	defaultCacheCapacity = 256
)

func (c *Config) fillDefaults() {
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = defaultCacheCapacity
	}
}
