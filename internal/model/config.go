package model

import "time"

// Config holds the complete application configuration
type Config struct {
	Lexicon     LexiconConfig     `yaml:"lexicon" mapstructure:"lexicon"`
	Analysis    AnalysisConfig    `yaml:"analysis" mapstructure:"analysis"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
}

// LexiconConfig locates the lexicon/grammar configuration
type LexiconConfig struct {
	Path string `yaml:"path" mapstructure:"path"` // YAML lexicon file; empty = built-in defaults
}

// AnalysisConfig controls the per-document pipeline
type AnalysisConfig struct {
	Family       string        `yaml:"family" mapstructure:"family"`               // vaers, faers, generic
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`             // Per-document deadline
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"` // Narrative size guard
}

// CacheConfig controls analysis result caching
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir             string        `yaml:"dir" mapstructure:"dir"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ConcurrencyConfig controls batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig throttles batch throughput toward the review store
type RateLimitConfig struct {
	DocsPerSecond float64 `yaml:"docs_per_second" mapstructure:"docs_per_second"`
	BurstSize     int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose" mapstructure:"verbose"`
	IncludeFooter bool `yaml:"include_footer" mapstructure:"include_footer"`
}

// LLMConfig controls the optional case-summary generation
type LLMConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // Empty = disabled
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"-" mapstructure:"-"` // From environment only
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Lexicon: LexiconConfig{},
		Analysis: AnalysisConfig{
			Family:       string(FamilyVAERS),
			Timeout:      30 * time.Second,
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             24 * time.Hour,
			CleanupInterval: time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimit: RateLimitConfig{
			DocsPerSecond: 20,
			BurstSize:     5,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
		LLM: LLMConfig{
			Model: "gpt-4o-mini",
		},
	}
}
