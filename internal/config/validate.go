package config

import (
	"fmt"
	"strings"
)

// knownFormats are the serialization formats the transformer can produce.
var knownFormats = map[string]bool{
	"json":  true,
	"yaml":  true,
	"csv":   true,
	"graph": true,
}

// Validate checks a configuration for internal consistency.
// It is called by the loader after unmarshalling; constructors taking a
// Config may assume a validated value.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Pipeline.MaxWorkers < 1 {
		return fmt.Errorf("pipeline.max_workers must be >= 1, got %d", cfg.Pipeline.MaxWorkers)
	}
	if cfg.Pipeline.MaxConsecutiveErrs < 1 {
		return fmt.Errorf("pipeline.max_consecutive_errors must be >= 1, got %d", cfg.Pipeline.MaxConsecutiveErrs)
	}
	if cfg.Pipeline.FileTimeout <= 0 {
		return fmt.Errorf("pipeline.file_timeout must be positive, got %v", cfg.Pipeline.FileTimeout)
	}

	if cfg.Transform.QualityThreshold < 0.0 || cfg.Transform.QualityThreshold > 1.0 {
		return fmt.Errorf("transform.quality_threshold must be in [0.0, 1.0], got %v", cfg.Transform.QualityThreshold)
	}
	for _, f := range cfg.Transform.OutputFormats {
		if !knownFormats[strings.ToLower(f)] {
			return fmt.Errorf("transform.output_formats contains unknown format %q", f)
		}
	}

	switch cfg.Embedding.Provider {
	case "http", "mock":
	default:
		return fmt.Errorf("embedding.provider must be \"http\" or \"mock\", got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Dimensions < 1 {
		return fmt.Errorf("embedding.dimensions must be >= 1, got %d", cfg.Embedding.Dimensions)
	}
	if cfg.Embedding.ChunkSize < 1 {
		return fmt.Errorf("embedding.chunk_size must be >= 1, got %d", cfg.Embedding.ChunkSize)
	}
	// Overlap must stay strictly below chunk size or chunking cannot advance.
	if cfg.Embedding.Overlap < 0 || cfg.Embedding.Overlap >= cfg.Embedding.ChunkSize {
		return fmt.Errorf("embedding.overlap_size must satisfy 0 <= overlap < chunk_size, got %d (chunk_size %d)",
			cfg.Embedding.Overlap, cfg.Embedding.ChunkSize)
	}

	if cfg.Storage.VectorDBType != "chromem" {
		return fmt.Errorf("storage.vector_db_type %q is not supported (only \"chromem\")", cfg.Storage.VectorDBType)
	}
	if cfg.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path must not be empty")
	}
	if cfg.Storage.OutputDirectory == "" {
		return fmt.Errorf("storage.output_directory must not be empty")
	}

	return nil
}
