package model

import "time"

// Config is the complete pipeline configuration. Everything is explicit and
// passed in at call time; nothing here is process-global.
type Config struct {
	Segmenter    SegmenterConfig    `yaml:"segmenter"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency"`
	LLM          LLMConfig          `yaml:"llm"`
	Cache        CacheConfig        `yaml:"cache"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting"`
	Output       OutputConfig       `yaml:"output"`
}

// SegmenterConfig controls how documents are split
type SegmenterConfig struct {
	MaxChars            int `yaml:"max_chars"`             // Target maximum segment size in characters
	OverlapChars        int `yaml:"overlap_chars"`         // Overlap carried between consecutive segments
	SinglePassThreshold int `yaml:"single_pass_threshold"` // Documents at or below this size become one segment
	MaxSegments         int `yaml:"max_segments"`          // Hard upper bound on emitted segments
	BoundarySlack       int `yaml:"boundary_slack"`        // Cut-point search radius; 0 means use OverlapChars
}

// ConcurrencyConfig controls parallelism
type ConcurrencyConfig struct {
	MaxInFlight int `yaml:"max_in_flight"` // Concurrent extractor calls per document
	Workers     int `yaml:"workers"`       // Concurrent documents in batch mode
}

// LLMConfig holds extraction backend settings
type LLMConfig struct {
	Provider  string `yaml:"provider"`   // "openai", "anthropic", "ollama"
	Model     string `yaml:"model"`      // Model name (provider-specific)
	APIKey    string `yaml:"-"`          // Never persisted; read from environment
	BaseURL   string `yaml:"base_url"`   // Custom endpoint (e.g. Ollama)
	Timeout   int    `yaml:"timeout"`    // Per-call timeout in seconds
	MaxTokens int    `yaml:"max_tokens"` // Response token budget
}

// CacheConfig controls the segment extraction cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`        // Disk cache directory
	MemoryTTL time.Duration `yaml:"memory_ttl"` // TTL for the in-memory layer
	DiskTTL   time.Duration `yaml:"disk_ttl"`   // TTL for the disk layer
}

// RateLimitingConfig bounds the request rate against the extraction backend
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// OutputConfig controls report rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	Dir     string `yaml:"dir"` // Output directory for batch reports
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Segmenter: SegmenterConfig{
			MaxChars:            12000,
			OverlapChars:        400,
			SinglePassThreshold: 12000,
			MaxSegments:         64,
			BoundarySlack:       0, // Follow OverlapChars
		},
		Concurrency: ConcurrencyConfig{
			MaxInFlight: 8,
			Workers:     4,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   60,
			MaxTokens: 2000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // Resolved to ~/.coalesce/cache by the CLI
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2.0,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Verbose: false,
			Dir:     "./coalesce-reports",
		},
	}
}
