package config

import "time"

// Config represents the complete twinlift configuration.
// It can be loaded from .twinlift/config.yml with environment variable overrides.
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Transform TransformConfig `yaml:"transform" mapstructure:"transform"`
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Storage   StorageConfig   `yaml:"storage" mapstructure:"storage"`
}

// PipelineConfig controls orchestration: batching, concurrency, and failure policy.
type PipelineConfig struct {
	EnableValidation   bool          `yaml:"enable_validation" mapstructure:"enable_validation"`     // run pre-flight checks before batches
	EnableLogging      bool          `yaml:"enable_logging" mapstructure:"enable_logging"`           // per-file progress logging
	EnableBackup       bool          `yaml:"enable_backup" mapstructure:"enable_backup"`             // keep previous artifacts as .bak before overwrite
	ParallelProcessing bool          `yaml:"parallel_processing" mapstructure:"parallel_processing"` // worker pool vs sequential
	MaxWorkers         int           `yaml:"max_workers" mapstructure:"max_workers"`                 // bounded pool size
	FileTimeout        time.Duration `yaml:"file_timeout" mapstructure:"file_timeout"`               // tier-1 external process bound
	ContinueOnError    bool          `yaml:"continue_on_error" mapstructure:"continue_on_error"`
	MaxConsecutiveErrs int           `yaml:"max_consecutive_errors" mapstructure:"max_consecutive_errors"`
	Tier1Command       string        `yaml:"tier1_command" mapstructure:"tier1_command"` // external parsing engine; empty disables tier 1
}

// TransformConfig controls scoring and serialization.
type TransformConfig struct {
	OutputFormats    []string `yaml:"output_formats" mapstructure:"output_formats"`       // e.g. ["json", "csv", "graph"]
	QualityThreshold float64  `yaml:"quality_threshold" mapstructure:"quality_threshold"` // 0.0-1.0; entities below are flagged
}

// EmbeddingConfig configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"` // "http" or "mock"
	Model      string `yaml:"embedding_model" mapstructure:"embedding_model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"` // embedding vector dimensions
	Endpoint   string `yaml:"endpoint" mapstructure:"endpoint"`     // embedding service endpoint URL
	ChunkSize  int    `yaml:"chunk_size" mapstructure:"chunk_size"`
	Overlap    int    `yaml:"overlap_size" mapstructure:"overlap_size"`
}

// StorageConfig defines where artifacts and databases are written.
type StorageConfig struct {
	DatabasePath    string `yaml:"database_path" mapstructure:"database_path"`
	VectorDBType    string `yaml:"vector_db_type" mapstructure:"vector_db_type"` // "chromem" is the only backend
	VectorDBPath    string `yaml:"vector_db_path" mapstructure:"vector_db_path"`
	OutputDirectory string `yaml:"output_directory" mapstructure:"output_directory"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			EnableValidation:   true,
			EnableLogging:      true,
			EnableBackup:       false,
			ParallelProcessing: false,
			MaxWorkers:         4,
			FileTimeout:        60 * time.Second,
			ContinueOnError:    true,
			MaxConsecutiveErrs: 5,
			Tier1Command:       "",
		},
		Transform: TransformConfig{
			OutputFormats:    []string{"json", "csv", "graph"},
			QualityThreshold: 0.8,
		},
		Embedding: EmbeddingConfig{
			Provider:   "mock",
			Model:      "BAAI/bge-small-en-v1.5",
			Dimensions: 384,
			Endpoint:   "http://127.0.0.1:8090/embed",
			ChunkSize:  512,
			Overlap:    64,
		},
		Storage: StorageConfig{
			DatabasePath:    ".twinlift/twins.db",
			VectorDBType:    "chromem",
			VectorDBPath:    ".twinlift/vectors",
			OutputDirectory: ".twinlift/output",
		},
	}
}
