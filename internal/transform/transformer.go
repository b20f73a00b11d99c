// Package transform scores, enriches, and serializes extraction results.
package transform

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/twinlift/twinlift/internal/config"
	"github.com/twinlift/twinlift/internal/model"
)

// Transformer converts a normalized extraction result into a decorated,
// multi-format-serializable result. Safe for concurrent use.
type Transformer struct {
	scorer *Scorer
}

// New creates a transformer from transform configuration.
func New(cfg config.TransformConfig) *Transformer {
	return &Transformer{
		scorer: NewScorer(cfg.QualityThreshold),
	}
}

// Transform scores and enriches the entity set, then serializes it into
// each requested format. Unknown format names fail only that format;
// an empty format set defaults to the nested JSON document.
func (t *Transformer) Transform(result *model.ExtractionResult, formatNames []string) *model.TransformResult {
	out := &model.TransformResult{
		Payloads:     make(map[string][]byte),
		FormatErrors: make(map[string]*model.PipelineError),
		Extraction:   result,
	}

	// Scoring failures abort only the affected entity.
	scoreErrs := t.scorer.ScoreAll(result)
	out.TransformsApplied += result.EntityCount() + len(result.Documents) - len(scoreErrs)

	now := time.Now()
	out.TransformsApplied += enrich(result, now)

	if len(formatNames) == 0 {
		formatNames = []string{"json"}
	}

	for _, name := range formatNames {
		name = strings.ToLower(name)
		if name == "graph" {
			export := BuildGraph(result, now)
			payload, err := json.MarshalIndent(export, "", "  ")
			if err != nil {
				out.FormatErrors[name] = model.NewError(model.ErrWriteFailure, "failed to marshal graph export", err)
				continue
			}
			out.Graph = export
			out.Payloads[name] = payload
			out.TransformsApplied++
			continue
		}

		fn, ok := formats[name]
		if !ok {
			out.FormatErrors[name] = model.NewError(model.ErrUnknownFormat,
				fmt.Sprintf("format %q is not supported", name), nil)
			continue
		}
		payload, err := fn(result)
		if err != nil {
			out.FormatErrors[name] = model.NewError(model.ErrWriteFailure, name, err)
			continue
		}
		out.Payloads[name] = payload
		out.TransformsApplied++
	}

	out.Success = len(out.Payloads) > 0 || len(formatNames) == 0
	return out
}
