// Package pipeline sequences extract → transform → load per file and
// runs batches sequentially or across a bounded worker pool.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/twinlift/twinlift/internal/config"
	"github.com/twinlift/twinlift/internal/extract"
	"github.com/twinlift/twinlift/internal/load"
	"github.com/twinlift/twinlift/internal/model"
	"github.com/twinlift/twinlift/internal/transform"
)

// Phase names used in timings and failure records.
const (
	PhaseExtract   = "extract"
	PhaseTransform = "transform"
	PhaseLoad      = "load"
)

// Orchestrator drives the three pipeline phases for single files and
// batches. Phases of one file run strictly in order and complete fully
// in memory before any persistence call; no entity is ever left
// half-persisted on cancellation.
type Orchestrator struct {
	cfg         *config.Config
	extractor   *extract.Extractor
	transformer *transform.Transformer
	loader      *load.Loader
	stats       *Aggregator

	// OnFile, when set, is invoked after each file reaches a terminal
	// state. Called from worker goroutines in parallel mode.
	OnFile func(result *model.ProcessingResult)
}

// NewOrchestrator wires the three phases from configuration.
// The loader owns the backend handles; orchestrator callers must Close it.
func NewOrchestrator(cfg *config.Config, loader *load.Loader) *Orchestrator {
	return &Orchestrator{
		cfg:         cfg,
		extractor:   extract.New(cfg.Pipeline),
		transformer: transform.New(cfg.Transform),
		loader:      loader,
		stats:       NewAggregator(),
	}
}

// Stats returns the cumulative batch statistics aggregator.
func (o *Orchestrator) Stats() *Aggregator {
	return o.stats
}

// FileOutcome bundles everything one file produced.
type FileOutcome struct {
	Result *model.ProcessingResult
	Load   *model.LoadResult
}

// ProcessFile runs one file through the strict phase sequence.
// Failures are recorded on the result, never returned; callers inspect
// Result.Status.
func (o *Orchestrator) ProcessFile(ctx context.Context, path string) *FileOutcome {
	result := model.NewProcessingResult(uuid.NewString(), path)
	outcome := &FileOutcome{Result: result}
	defer func() {
		if o.OnFile != nil {
			o.OnFile(result)
		}
	}()

	// Extract.
	result.Advance()
	start := time.Now()
	extraction, err := o.extractor.Extract(ctx, path)
	result.Timings[PhaseExtract] = time.Since(start)
	if err != nil {
		result.Fail(PhaseExtract, err)
		o.logf("✗ %s: extraction failed: %v", path, err)
		return outcome
	}

	// Transform.
	result.Advance()
	start = time.Now()
	transformed := o.transformer.Transform(extraction, o.cfg.Transform.OutputFormats)
	result.Timings[PhaseTransform] = time.Since(start)
	if !transformed.Success {
		for _, ferr := range transformed.FormatErrors {
			result.Fail(PhaseTransform, ferr)
			break
		}
		o.logf("✗ %s: no format could be produced", path)
		return outcome
	}
	for name, ferr := range transformed.FormatErrors {
		// Per-format failures skip only that format.
		o.logf("Warning: %s: format %s skipped: %v", path, name, ferr)
	}

	// Load.
	result.Advance()
	start = time.Now()
	outcome.Load = o.loader.Load(ctx, transformed)
	result.Timings[PhaseLoad] = time.Since(start)
	for name, status := range outcome.Load.Backends {
		if !status.Success {
			// Isolated per backend; the file still completes.
			o.logf("Warning: %s: backend %s failed: %s", path, name, status.Error)
		}
	}

	result.Advance()
	o.logf("✓ %s: tier=%s entities=%d rows=%d embeddings=%d",
		path, extraction.Tier, extraction.EntityCount(),
		outcome.Load.DatabaseRecords, outcome.Load.VectorEmbeddings)
	return outcome
}

// Process is the structured single-file entry point across the pipeline
// boundary: it never returns an error, only a response.
func (o *Orchestrator) Process(ctx context.Context, path string) model.PipelineResponse {
	outcome := o.ProcessFile(ctx, path)
	var local Stats
	local.Record(outcome.Result.Status == model.StatusFailed, outcome.Result.Timings)
	o.stats.Merge(&local)

	if outcome.Result.Status == model.StatusFailed {
		return model.PipelineResponse{
			Message:   outcome.Result.Error,
			ErrorCode: outcome.Result.ErrorCode,
		}
	}
	return model.PipelineResponse{Success: true, Message: "processed " + path}
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.cfg.Pipeline.EnableLogging {
		log.Printf(format+"\n", args...)
	}
}
