package transform

import (
	"fmt"
	"strings"

	"github.com/twinlift/twinlift/internal/model"
)

// Scorer derives quality and compliance records for extracted entities.
//
// The score is a deterministic blend of field completeness and a
// package-level compliance signal:
//
//	score = 0.7*completeness + 0.3*compliance
//
// completeness is the fraction of populated required identity fields
// (id, idShort, description, kind). The compliance signal is 1.0 when a
// certification-bearing submodel is present in the package, 0.5 for a
// quality-assurance submodel, 0.0 otherwise. Increasing completeness can
// therefore never lower the level.
//
// Levels: score < 0.5 LOW, < 0.8 MEDIUM, otherwise HIGH.
type Scorer struct {
	threshold float64
}

const (
	completenessWeight = 0.7
	complianceWeight   = 0.3

	mediumCutoff = 0.5
	highCutoff   = 0.8
)

// complianceMarkers identify compliance-relevant submodels by their
// short id or description, strongest signal first.
var complianceMarkers = []struct {
	marker string
	signal float64
}{
	{"certif", 1.0},
	{"conformance", 1.0},
	{"qualityassurance", 0.5},
	{"quality", 0.5},
}

// NewScorer creates a scorer flagging entities below the given threshold.
func NewScorer(threshold float64) *Scorer {
	return &Scorer{threshold: threshold}
}

// ScoreAll computes quality records for every entity in place. A failure
// scoring one entity is returned in the error slice and leaves the other
// entities' records intact.
func (s *Scorer) ScoreAll(result *model.ExtractionResult) []*model.PipelineError {
	signal := complianceSignal(result.Submodels)

	var errs []*model.PipelineError
	for i := range result.Assets {
		record, err := s.scoreEntity(assetFields(&result.Assets[i]), signal)
		if err != nil {
			errs = append(errs, model.NewError(model.ErrQualityComputation, result.Assets[i].ID, err))
			continue
		}
		result.Assets[i].Quality = record
	}
	for i := range result.Submodels {
		record, err := s.scoreEntity(submodelFields(&result.Submodels[i]), signal)
		if err != nil {
			errs = append(errs, model.NewError(model.ErrQualityComputation, result.Submodels[i].ID, err))
			continue
		}
		result.Submodels[i].Quality = record
	}
	for i := range result.Documents {
		doc := &result.Documents[i]
		record, err := s.scoreEntity([]string{doc.Filename, doc.Type}, signal)
		if err != nil {
			errs = append(errs, model.NewError(model.ErrQualityComputation, doc.Filename, err))
			continue
		}
		result.Documents[i].Quality = record
	}
	return errs
}

// scoreEntity maps required-field values and the package compliance
// signal to a quality record.
func (s *Scorer) scoreEntity(required []string, signal float64) (*model.QualityRecord, error) {
	if len(required) == 0 {
		return nil, fmt.Errorf("entity has no required fields")
	}

	populated := 0
	for _, field := range required {
		if strings.TrimSpace(field) != "" {
			populated++
		}
	}
	completeness := float64(populated) / float64(len(required))
	score := completenessWeight*completeness + complianceWeight*signal

	level := model.QualityLow
	switch {
	case score >= highCutoff:
		level = model.QualityHigh
	case score >= mediumCutoff:
		level = model.QualityMedium
	}

	compliance := model.NonCompliant
	switch {
	case signal >= 0.5 && completeness >= 0.5:
		compliance = model.Compliant
	case signal > 0 || completeness >= 0.5:
		compliance = model.Partial
	}

	return &model.QualityRecord{
		Score:            score,
		Level:            level,
		Compliance:       compliance,
		BelowThreshold:   score < s.threshold,
		PopulatedFields:  populated,
		RequiredFields:   len(required),
		ComplianceSignal: signal,
	}, nil
}

// complianceSignal derives the package-level compliance signal from the
// presence of compliance-relevant submodels.
func complianceSignal(submodels []model.Submodel) float64 {
	best := 0.0
	for i := range submodels {
		haystack := strings.ToLower(submodels[i].ShortID + " " + submodels[i].Description)
		haystack = strings.ReplaceAll(haystack, " ", "")
		for _, m := range complianceMarkers {
			if strings.Contains(haystack, m.marker) && m.signal > best {
				best = m.signal
			}
		}
	}
	return best
}

func assetFields(a *model.Asset) []string {
	return []string{a.ID, a.ShortID, a.Description, a.Kind}
}

func submodelFields(sm *model.Submodel) []string {
	return []string{sm.ID, sm.ShortID, sm.Description, sm.Kind}
}
