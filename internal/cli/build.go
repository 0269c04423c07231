package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ppiankov/coalesce/internal/cache"
	"github.com/ppiankov/coalesce/internal/extract"
	"github.com/ppiankov/coalesce/internal/llm"
	"github.com/ppiankov/coalesce/internal/merge"
	"github.com/ppiankov/coalesce/internal/model"
	"github.com/ppiankov/coalesce/internal/pipeline"
	"github.com/ppiankov/coalesce/internal/worker"
)

// resolveAPIKey fills the API key from the environment for the configured provider
func resolveAPIKey(cfg *model.Config) error {
	switch cfg.LLM.Provider {
	case "openai":
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}
	return nil
}

// buildRegistry returns the schema registry, with optional overrides loaded
// from a YAML file.
func buildRegistry(schemaFile string) (*merge.Registry, error) {
	registry := merge.NewRegistry()
	if schemaFile != "" {
		if err := registry.LoadFile(schemaFile); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// buildPipeline assembles the full extraction chain for one record type:
// provider -> rate limiter -> cache -> coordinator.
func buildPipeline(cfg *model.Config, recordType string, rules []model.MergeRule) (*pipeline.Pipeline, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured (set --provider or llm.provider in config)")
	}

	var extractor extract.Extractor = llm.NewSegmentExtractor(
		provider, recordType, merge.FieldNames(rules), cfg.LLM.Model, cfg.LLM.MaxTokens)

	if cfg.RateLimiting.RequestsPerSecond > 0 {
		limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
		extractor = extract.NewRateLimitedExtractor(extractor, limiter, cfg.LLM.Model)
	}

	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = filepath.Join(home, ".coalesce", "cache")
		}
		store := cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
		scope := fmt.Sprintf("%s/%s/%s", cfg.LLM.Provider, cfg.LLM.Model, recordType)
		extractor = extract.NewCachedExtractor(extractor, store, scope, cfg.Cache.DiskTTL)
	}

	return pipeline.NewPipeline(cfg, extractor, recordType, rules), nil
}
