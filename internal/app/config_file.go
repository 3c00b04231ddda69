package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// duration accepts both "45s"-style strings and integer nanoseconds.
type duration time.Duration

func (d *duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err == nil {
		parsed, perr := time.ParseDuration(raw)
		if perr != nil {
			return fmt.Errorf("invalid duration %q: %w", raw, perr)
		}
		*d = duration(parsed)
		return nil
	}
	var ns int64
	if err := node.Decode(&ns); err != nil {
		return err
	}
	*d = duration(ns)
	return nil
}

// FileConfig is the single-file YAML configuration schema. Nested sections
// map naturally to flags and env.
type FileConfig struct {
	Cache struct {
		Capacity int      `yaml:"capacity"`
		DB       string   `yaml:"db"`
		MaxAge   duration `yaml:"maxAge"`
	} `yaml:"cache"`

	Workers        int      `yaml:"workers"`
	Timeout        duration `yaml:"timeout"`
	MaxSourceBytes int64    `yaml:"maxSourceBytes"`

	LLM struct {
		BaseURL string `yaml:"base"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"key"`
	} `yaml:"llm"`

	Extraction struct {
		OCRLanguage     string `yaml:"ocrLanguage"`
		MaxContentBytes int    `yaml:"maxContentBytes"`
		LanguageHint    string `yaml:"languageHint"`
	} `yaml:"extraction"`

	Verbose bool `yaml:"verbose"`
}

// LoadConfigFile reads and parses a YAML config file.
func LoadConfigFile(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// MergeFileConfig fills unset cfg fields from the file. Values already set
// (e.g. from flags) win over the file; env is applied after both by the
// caller via ApplyEnvToConfig, giving flags > file > env precedence.
func MergeFileConfig(cfg *Config, fc *FileConfig) {
	if cfg == nil || fc == nil {
		return
	}
	if cfg.CacheCapacity == 0 && fc.Cache.Capacity > 0 {
		cfg.CacheCapacity = fc.Cache.Capacity
	}
	if cfg.CacheDBPath == "" {
		cfg.CacheDBPath = fc.Cache.DB
	}
	if cfg.CacheMaxAge == 0 {
		cfg.CacheMaxAge = time.Duration(fc.Cache.MaxAge)
	}
	if cfg.Workers == 0 {
		cfg.Workers = fc.Workers
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = time.Duration(fc.Timeout)
	}
	if cfg.MaxSourceBytes == 0 {
		cfg.MaxSourceBytes = fc.MaxSourceBytes
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.Extraction.OCRLanguage == "" {
		cfg.Extraction.OCRLanguage = fc.Extraction.OCRLanguage
	}
	if cfg.Extraction.MaxContentBytes == 0 {
		cfg.Extraction.MaxContentBytes = fc.Extraction.MaxContentBytes
	}
	if cfg.Extraction.LanguageHint == "" {
		cfg.Extraction.LanguageHint = fc.Extraction.LanguageHint
	}
	if !cfg.Verbose {
		cfg.Verbose = fc.Verbose
	}
}
