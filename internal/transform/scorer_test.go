package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinlift/twinlift/internal/model"
)

// Test Plan for Quality Scoring:
// - Scoring the same entity set twice yields identical records
// - Fully populated entity with a certification submodel scores HIGH and COMPLIANT
// - Adding a populated field never lowers score or level (monotonicity)
// - No compliance submodel yields signal 0.0 and at best PARTIAL
// - Quality-assurance submodels yield the weaker 0.5 signal
// - Entities below the threshold are flagged
// - Documents are scored on filename and type

func twinResult(assetFields [4]string, submodelShortID string) *model.ExtractionResult {
	return &model.ExtractionResult{
		Assets: []model.Asset{{
			ID:          assetFields[0],
			ShortID:     assetFields[1],
			Description: assetFields[2],
			Kind:        assetFields[3],
		}},
		Submodels: []model.Submodel{{
			ID:      "https://example.com/sm/1",
			ShortID: submodelShortID,
			Kind:    "Instance",
		}},
	}
}

func TestScorer_Deterministic(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(0.8)
	first := twinResult([4]string{"urn:asset:1", "Pump", "Hydraulic pump", "Instance"}, "Certification")
	second := twinResult([4]string{"urn:asset:1", "Pump", "Hydraulic pump", "Instance"}, "Certification")

	require.Empty(t, scorer.ScoreAll(first))
	require.Empty(t, scorer.ScoreAll(second))

	assert.Equal(t, first.Assets[0].Quality, second.Assets[0].Quality)
	assert.Equal(t, first.Submodels[0].Quality, second.Submodels[0].Quality)
}

func TestScorer_CompleteCertifiedAssetIsHighAndCompliant(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(0.8)
	result := twinResult([4]string{"urn:asset:1", "Pump", "Hydraulic pump", "Instance"}, "Certification")
	require.Empty(t, scorer.ScoreAll(result))

	q := result.Assets[0].Quality
	require.NotNil(t, q)
	assert.InDelta(t, 1.0, q.Score, 1e-9) // 0.7*1.0 + 0.3*1.0
	assert.Equal(t, model.QualityHigh, q.Level)
	assert.Equal(t, model.Compliant, q.Compliance)
	assert.False(t, q.BelowThreshold)
	assert.Equal(t, 4, q.PopulatedFields)
	assert.Equal(t, 4, q.RequiredFields)
}

func TestScorer_MonotoneInCompleteness(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(0.8)
	fields := [4]string{"urn:asset:1", "", "", ""}
	prevScore := -1.0
	prevLevel := 0

	levelRank := map[model.QualityLevel]int{
		model.QualityLow:    0,
		model.QualityMedium: 1,
		model.QualityHigh:   2,
	}
	fill := []string{"Pump", "Hydraulic pump", "Instance"}

	for step := 0; step <= len(fill); step++ {
		result := twinResult(fields, "TechnicalData")
		require.Empty(t, scorer.ScoreAll(result))
		q := result.Assets[0].Quality
		require.NotNil(t, q)

		assert.GreaterOrEqual(t, q.Score, prevScore, "score must not drop when fields are added")
		assert.GreaterOrEqual(t, levelRank[q.Level], prevLevel, "level must not drop when fields are added")
		prevScore, prevLevel = q.Score, levelRank[q.Level]

		if step < len(fill) {
			fields[step+1] = fill[step]
		}
	}
}

func TestScorer_ComplianceSignal(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(0.8)

	// No compliance-relevant submodel: signal 0, complete entity is PARTIAL.
	plain := twinResult([4]string{"urn:asset:1", "Pump", "Hydraulic pump", "Instance"}, "TechnicalData")
	require.Empty(t, scorer.ScoreAll(plain))
	q := plain.Assets[0].Quality
	assert.InDelta(t, 0.0, q.ComplianceSignal, 1e-9)
	assert.Equal(t, model.Partial, q.Compliance)
	assert.InDelta(t, 0.7, q.Score, 1e-9)

	// Quality-assurance submodel carries the weaker signal.
	qa := twinResult([4]string{"urn:asset:1", "Pump", "Hydraulic pump", "Instance"}, "QualityAssurance")
	require.Empty(t, scorer.ScoreAll(qa))
	assert.InDelta(t, 0.5, qa.Assets[0].Quality.ComplianceSignal, 1e-9)
	assert.Equal(t, model.Compliant, qa.Assets[0].Quality.Compliance)
}

func TestScorer_BelowThresholdFlag(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(0.8)
	sparse := twinResult([4]string{"urn:asset:1", "", "", ""}, "TechnicalData")
	require.Empty(t, scorer.ScoreAll(sparse))

	q := sparse.Assets[0].Quality
	assert.InDelta(t, 0.175, q.Score, 1e-9) // 0.7*0.25
	assert.Equal(t, model.QualityLow, q.Level)
	assert.True(t, q.BelowThreshold)
}

func TestScorer_ScoresDocuments(t *testing.T) {
	t.Parallel()

	scorer := NewScorer(0.8)
	result := &model.ExtractionResult{
		Documents: []model.Document{
			{Filename: "manual.pdf", Type: "application/pdf"},
			{Filename: "", Type: ""},
		},
	}
	require.Empty(t, scorer.ScoreAll(result))

	require.NotNil(t, result.Documents[0].Quality)
	assert.Equal(t, 2, result.Documents[0].Quality.PopulatedFields)
	require.NotNil(t, result.Documents[1].Quality)
	assert.Equal(t, 0, result.Documents[1].Quality.PopulatedFields)
}
