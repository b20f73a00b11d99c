package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (TWINLIFT_*)
// 2. Config file (.twinlift/config.yml or .twinlift/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".twinlift")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides
	v.SetEnvPrefix("TWINLIFT")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., TWINLIFT_PIPELINE_MAX_WORKERS)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Bind environment variables to config keys
	v.BindEnv("pipeline.enable_validation")
	v.BindEnv("pipeline.enable_logging")
	v.BindEnv("pipeline.enable_backup")
	v.BindEnv("pipeline.parallel_processing")
	v.BindEnv("pipeline.max_workers")
	v.BindEnv("pipeline.file_timeout")
	v.BindEnv("pipeline.continue_on_error")
	v.BindEnv("pipeline.max_consecutive_errors")
	v.BindEnv("pipeline.tier1_command")

	v.BindEnv("transform.output_formats")
	v.BindEnv("transform.quality_threshold")

	v.BindEnv("embedding.provider")
	v.BindEnv("embedding.embedding_model")
	v.BindEnv("embedding.dimensions")
	v.BindEnv("embedding.endpoint")
	v.BindEnv("embedding.chunk_size")
	v.BindEnv("embedding.overlap_size")

	v.BindEnv("storage.database_path")
	v.BindEnv("storage.vector_db_type")
	v.BindEnv("storage.vector_db_path")
	v.BindEnv("storage.output_directory")

	setDefaults(v)

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("pipeline.enable_validation", defaults.Pipeline.EnableValidation)
	v.SetDefault("pipeline.enable_logging", defaults.Pipeline.EnableLogging)
	v.SetDefault("pipeline.enable_backup", defaults.Pipeline.EnableBackup)
	v.SetDefault("pipeline.parallel_processing", defaults.Pipeline.ParallelProcessing)
	v.SetDefault("pipeline.max_workers", defaults.Pipeline.MaxWorkers)
	v.SetDefault("pipeline.file_timeout", defaults.Pipeline.FileTimeout)
	v.SetDefault("pipeline.continue_on_error", defaults.Pipeline.ContinueOnError)
	v.SetDefault("pipeline.max_consecutive_errors", defaults.Pipeline.MaxConsecutiveErrs)
	v.SetDefault("pipeline.tier1_command", defaults.Pipeline.Tier1Command)

	v.SetDefault("transform.output_formats", defaults.Transform.OutputFormats)
	v.SetDefault("transform.quality_threshold", defaults.Transform.QualityThreshold)

	v.SetDefault("embedding.provider", defaults.Embedding.Provider)
	v.SetDefault("embedding.embedding_model", defaults.Embedding.Model)
	v.SetDefault("embedding.dimensions", defaults.Embedding.Dimensions)
	v.SetDefault("embedding.endpoint", defaults.Embedding.Endpoint)
	v.SetDefault("embedding.chunk_size", defaults.Embedding.ChunkSize)
	v.SetDefault("embedding.overlap_size", defaults.Embedding.Overlap)

	v.SetDefault("storage.database_path", defaults.Storage.DatabasePath)
	v.SetDefault("storage.vector_db_type", defaults.Storage.VectorDBType)
	v.SetDefault("storage.vector_db_path", defaults.Storage.VectorDBPath)
	v.SetDefault("storage.output_directory", defaults.Storage.OutputDirectory)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
