// Package extract turns one package file into a normalized entity set.
//
// Extraction runs an ordered strategy chain: an external
// specification-compliant engine (tier 1), an optional in-process
// specification-aware parser (tier 2), and a direct archive scan
// (tier 3). The first tier to succeed wins; tier 3 never fails on a
// structurally valid archive.
package extract

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/twinlift/twinlift/internal/config"
	"github.com/twinlift/twinlift/internal/model"
)

// ParseRequest carries the inputs a tier needs.
type ParseRequest struct {
	// Path of the package file. Tiers must treat it as read-only.
	Path string
	// ScratchDir is a per-extraction temporary directory. The extractor
	// removes it on every exit path; tiers must not rely on it surviving.
	ScratchDir string
}

// Parser is one tier of the extraction strategy chain.
type Parser interface {
	// Name identifies the tier ("tier1", "tier2", "tier3").
	Name() string
	// Available reports whether this tier can run at all in the current
	// environment. Unavailable tiers are skipped without recording an error.
	Available() bool
	// Parse produces a normalized extraction result for the package.
	Parse(ctx context.Context, req ParseRequest) (*model.ExtractionResult, error)
}

// Extractor runs the strategy chain for one package file at a time.
// It is safe for concurrent use; each Extract call gets its own scratch
// directory.
type Extractor struct {
	chain []Parser
}

// New builds an extractor from pipeline configuration. Tier 1 is included
// only when an external command is configured, tier 2 only when a parser
// has been registered, and tier 3 always.
func New(cfg config.PipelineConfig) *Extractor {
	var chain []Parser
	if cfg.Tier1Command != "" {
		chain = append(chain, newTier1(cfg.Tier1Command, cfg.FileTimeout))
	}
	if t2 := registeredTier2(); t2 != nil {
		chain = append(chain, t2)
	}
	chain = append(chain, newTier3())
	return &Extractor{chain: chain}
}

// NewWithChain builds an extractor with an explicit tier chain. Used by
// tests and by callers embedding their own tier implementations.
func NewWithChain(chain ...Parser) *Extractor {
	return &Extractor{chain: chain}
}

// Extract validates the package file and runs the tier chain until one
// tier succeeds. Tier failures below the last tier are recorded in the
// result, not returned. The returned error is always a
// *model.PipelineError (FileNotFound or InvalidArchive) or nil.
func (e *Extractor) Extract(ctx context.Context, path string) (*model.ExtractionResult, error) {
	if err := ValidateArchive(path); err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp("", "twinlift-extract-*")
	if err != nil {
		return nil, model.NewError(model.ErrParseFailure, "failed to create scratch dir", err)
	}
	defer os.RemoveAll(scratch)

	req := ParseRequest{Path: path, ScratchDir: scratch}
	timings := make(map[string]time.Duration)
	var tierErrors []string

	for _, tier := range e.chain {
		if !tier.Available() {
			continue
		}
		start := time.Now()
		result, err := tier.Parse(ctx, req)
		timings[tier.Name()] = time.Since(start)
		if err != nil {
			// ParseFailure / Tier1Timeout: recovered locally by falling
			// through to the next tier.
			tierErrors = append(tierErrors, fmt.Sprintf("%s: %v", tier.Name(), err))
			continue
		}

		result.SourceFile = path
		result.Tier = tier.Name()
		result.TierTimings = timings
		result.TierErrors = tierErrors
		stampProvenance(result, path, tier.Name())
		return result, nil
	}

	// Unreachable with tier 3 in the chain: tier 3 accepts any archive
	// that passed validation. Kept for explicitly built chains.
	return nil, model.NewError(model.ErrParseFailure, "all extraction tiers failed", nil)
}

// stampProvenance fills source file and winning tier on every entity.
func stampProvenance(result *model.ExtractionResult, path, tier string) {
	for i := range result.Assets {
		result.Assets[i].Provenance.SourceFile = path
		result.Assets[i].Provenance.Tier = tier
	}
	for i := range result.Submodels {
		result.Submodels[i].Provenance.SourceFile = path
		result.Submodels[i].Provenance.Tier = tier
	}
}
