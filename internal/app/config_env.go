package app

import (
	"os"
	"strconv"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.CacheCapacity == 0 {
		if n, err := strconv.Atoi(os.Getenv("DOCSIFT_CACHE_CAPACITY")); err == nil && n > 0 {
			cfg.CacheCapacity = n
		}
	}
	if cfg.CacheDBPath == "" {
		cfg.CacheDBPath = os.Getenv("DOCSIFT_CACHE_DB")
	}
	if cfg.CacheMaxAge == 0 {
		if d, err := time.ParseDuration(os.Getenv("DOCSIFT_CACHE_MAX_AGE")); err == nil && d > 0 {
			cfg.CacheMaxAge = d
		}
	}
	if cfg.Workers == 0 {
		if n, err := strconv.Atoi(os.Getenv("DOCSIFT_WORKERS")); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if cfg.RequestTimeout == 0 {
		if d, err := time.ParseDuration(os.Getenv("DOCSIFT_TIMEOUT")); err == nil && d > 0 {
			cfg.RequestTimeout = d
		}
	}
	if cfg.MaxSourceBytes == 0 {
		if n, err := strconv.ParseInt(os.Getenv("DOCSIFT_MAX_SOURCE_BYTES"), 10, 64); err == nil && n > 0 {
			cfg.MaxSourceBytes = n
		}
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	}

	if cfg.Extraction.OCRLanguage == "" {
		cfg.Extraction.OCRLanguage = os.Getenv("DOCSIFT_OCR_LANGUAGE")
	}
	if cfg.Extraction.LanguageHint == "" {
		cfg.Extraction.LanguageHint = os.Getenv("DOCSIFT_LANGUAGE")
	}
}
