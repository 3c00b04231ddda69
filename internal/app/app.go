// Package app wires the registry, cache, pipeline, and batch coordinator
// into the extraction service exposed to the CLI and embedders.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/docsift/docsift/internal/batch"
	"github.com/docsift/docsift/internal/cache"
	"github.com/docsift/docsift/internal/extract"
	"github.com/docsift/docsift/internal/extractors"
	"github.com/docsift/docsift/internal/llm"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/registry"
	"github.com/docsift/docsift/internal/stages"
)

// App is the extraction service. Construct with New, share freely across
// goroutines, and Close when done to release the cache store.
type App struct {
	cfg   Config
	reg   *registry.Registry
	cache *cache.Cache
	store *cache.SQLiteStore
}

// New builds an App: opens the optional cache store, sizes the cache, and
// registers the built-in extractors and stages unless cfg.SkipDefaults.
func New(cfg Config) (*App, error) {
	cfg.fillDefaults()
	a := &App{cfg: cfg, reg: registry.New()}

	var opts []cache.Option
	if cfg.CacheDBPath != "" {
		store, err := cache.OpenSQLiteStore(cfg.CacheDBPath)
		if err != nil {
			return nil, fmt.Errorf("cache store: %w", err)
		}
		if removed, err := store.Prune(context.Background(), cfg.CacheMaxAge); err != nil {
			log.Warn().Err(err).Msg("cache store prune failed")
		} else if removed > 0 {
			log.Info().Int64("removed", removed).Msg("pruned persisted cache entries")
		}
		a.store = store
		opts = append(opts, cache.WithStore(store))
	}
	a.cache = cache.New(cfg.CacheCapacity, opts...)

	if !cfg.SkipDefaults {
		if err := extractors.RegisterDefaults(a.reg); err != nil {
			return nil, err
		}
		if err := stages.RegisterDefaults(a.reg); err != nil {
			return nil, err
		}
		if cfg.LLMModel != "" && (cfg.LLMBaseURL != "" || cfg.LLMAPIKey != "") {
			client := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey)
			if err := stages.RegisterSummary(a.reg, client, cfg.LLMModel); err != nil {
				return nil, err
			}
			log.Info().Str("model", cfg.LLMModel).Msg("summary stage enabled")
		}
	}
	return a, nil
}

// Register binds an extractor to a format identifier.
func (a *App) Register(format string, ex extract.Extractor, override bool) error {
	return a.reg.Register(format, ex, override)
}

// RegisterStage adds a post-processing stage.
func (a *App) RegisterStage(name string, p extract.PostProcessor, crit extract.Criticality, order int) error {
	return a.reg.RegisterStage(name, p, crit, order)
}

// Formats lists the registered format identifiers.
func (a *App) Formats() []string { return a.reg.Formats() }

// CacheStats returns cumulative cache counters.
func (a *App) CacheStats() cache.Stats { return a.cache.Stats() }

// Close releases the persistent cache store, if any.
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// ExtractOne runs a single request through lookup, cache, extraction, and
// post-processing. Concurrent callers with an identical fingerprint share
// one computation.
func (a *App) ExtractOne(ctx context.Context, req extract.Request) (*extract.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, mapCtxErr(err)
	}
	if req.Config == (extract.Config{}) {
		req.Config = a.cfg.Extraction
	}
	ex, err := a.reg.Lookup(req.Format)
	if err != nil {
		return nil, err
	}
	key, err := cache.KeyFrom(req)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: %w", err)
	}
	return a.cache.GetOrCompute(ctx, key, func(ctx context.Context) (*extract.Result, error) {
		return a.compute(ctx, req, ex, key)
	})
}

// compute is the miss path: load source bytes, invoke the extractor under
// the per-request deadline, then run the pipeline.
func (a *App) compute(ctx context.Context, req extract.Request, ex extract.Extractor, key string) (*extract.Result, error) {
	if a.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.RequestTimeout)
		defer cancel()
	}
	data := req.Data
	if req.Path != "" {
		if a.cfg.MaxSourceBytes > 0 {
			if fi, err := os.Stat(req.Path); err == nil && fi.Size() > a.cfg.MaxSourceBytes {
				return nil, fmt.Errorf("source %s is %d bytes, limit %d: %w", req.Path, fi.Size(), a.cfg.MaxSourceBytes, extract.ErrResourceExhausted)
			}
		}
		b, err := os.ReadFile(req.Path)
		if err != nil {
			return nil, fmt.Errorf("read source: %w", err)
		}
		data = b
	}
	if a.cfg.MaxSourceBytes > 0 && int64(len(data)) > a.cfg.MaxSourceBytes {
		return nil, fmt.Errorf("source is %d bytes, limit %d: %w", len(data), a.cfg.MaxSourceBytes, extract.ErrResourceExhausted)
	}
	if err := ctx.Err(); err != nil {
		return nil, mapCtxErr(err)
	}
	r, err := ex.Extract(ctx, data, req.Format, req.Config)
	if err != nil {
		if ctxErr := mapCtxErr(err); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &extract.ExtractorError{Format: req.Format, Fingerprint: key, Err: err}
	}
	out, err := pipeline.Run(ctx, r, a.reg.Stages(), req.Config)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractMany processes requests across a bounded worker pool and returns
// one outcome per request in input order.
func (a *App) ExtractMany(ctx context.Context, requests []extract.Request) []batch.Outcome {
	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return batch.Run(ctx, requests, workers, a.ExtractOne)
}

// mapCtxErr translates context errors (direct or wrapped) into the service
// taxonomy; it returns nil for non-context errors.
func mapCtxErr(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return extract.ErrTimeout
	case errors.Is(err, context.Canceled):
		return extract.ErrCancelled
	}
	return nil
}
