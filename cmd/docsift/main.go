package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/docsift/docsift/internal/app"
	"github.com/docsift/docsift/internal/extract"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath    string
		format        string
		asJSON        bool
		verbose       bool
		workers       int
		timeout       time.Duration
		cacheCapacity int
		cacheDB       string
		cacheMaxAge   time.Duration
		ocrLanguage   string
		maxBytes      int
	)

	flag.StringVar(&configPath, "config", "", "Path to YAML config file")
	flag.StringVar(&format, "format", "", "Format identifier override (e.g. text/plain); detected from extension when empty")
	flag.BoolVar(&asJSON, "json", false, "Emit full results as JSON instead of plain content")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.IntVar(&workers, "workers", 0, "Maximum parallel extractions (0 = number of CPUs)")
	flag.DurationVar(&timeout, "timeout", 0, "Per-document extraction timeout (0 disables)")
	flag.IntVar(&cacheCapacity, "cache.capacity", 0, "In-memory cache capacity in entries")
	flag.StringVar(&cacheDB, "cache.db", "", "Path to persistent cache database (empty disables)")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Prune persisted cache entries older than this at startup")
	flag.StringVar(&ocrLanguage, "ocr.lang", "", "OCR language for image inputs")
	flag.IntVar(&maxBytes, "max.contentBytes", 0, "Truncate extracted content beyond this many bytes (0 disables)")
	var maxSource int64
	flag.Int64Var(&maxSource, "max.sourceBytes", 0, "Reject sources larger than this many bytes (0 disables)")
	flag.Parse()

	cfg := app.Config{
		CacheCapacity:  cacheCapacity,
		CacheDBPath:    cacheDB,
		CacheMaxAge:    cacheMaxAge,
		Workers:        workers,
		RequestTimeout: timeout,
		MaxSourceBytes: maxSource,
		Extraction: extract.Config{
			OCRLanguage:     ocrLanguage,
			MaxContentBytes: maxBytes,
		},
		Verbose: verbose,
	}
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config file")
		}
		app.MergeFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: docsift [flags] FILE [FILE...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	svc, err := app.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	defer func() { _ = svc.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	requests := make([]extract.Request, len(paths))
	for i, p := range paths {
		requests[i] = extract.Request{Path: p, Format: formatFor(p, format)}
	}

	outcomes := svc.ExtractMany(ctx, requests)
	failed := 0
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for i, o := range outcomes {
		if o.Err != nil {
			failed++
			log.Error().Err(o.Err).Str("path", paths[i]).Msg("extraction failed")
			continue
		}
		if asJSON {
			if err := enc.Encode(o.Result); err != nil {
				log.Error().Err(err).Msg("encode result")
			}
			continue
		}
		if len(outcomes) > 1 {
			fmt.Printf("==> %s\n", paths[i])
		}
		fmt.Println(o.Result.Content)
	}

	st := svc.CacheStats()
	log.Info().
		Uint64("hits", st.Hits).
		Uint64("misses", st.Misses).
		Uint64("evictions", st.Evictions).
		Int("failed", failed).
		Msg("done")
	if failed > 0 {
		os.Exit(1)
	}
}

// formatFor resolves the format identifier for a path: explicit override
// first, then the extension-based MIME type.
func formatFor(path, override string) string {
	if override != "" {
		return override
	}
	switch ext := filepath.Ext(path); ext {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", "":
		return "text/plain"
	default:
		if mt := mime.TypeByExtension(ext); mt != "" {
			if parsed, _, err := mime.ParseMediaType(mt); err == nil {
				return parsed
			}
		}
		return "application/octet-stream"
	}
}
