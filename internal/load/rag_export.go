package load

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/twinlift/twinlift/internal/model"
)

// RAGEntry is one denormalized text+metadata record of the RAG dataset.
type RAGEntry struct {
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
}

// RAGDataset is the JSON artifact assembled for retrieval-augmented
// generation. Only entities at or above the quality threshold are
// included.
type RAGDataset struct {
	CreatedAt  time.Time  `json:"created_at"`
	SourceFile string     `json:"source_file"`
	MinQuality float64    `json:"min_quality"`
	Entries    []RAGEntry `json:"entries"`
}

// BuildRAGDataset assembles the quality-filtered dataset from a scored
// extraction result.
func BuildRAGDataset(result *model.ExtractionResult, minQuality float64) *RAGDataset {
	dataset := &RAGDataset{
		CreatedAt:  time.Now().UTC(),
		SourceFile: result.SourceFile,
		MinQuality: minQuality,
	}

	include := func(q *model.QualityRecord) bool {
		return q != nil && q.Score >= minQuality
	}

	for i := range result.Assets {
		a := &result.Assets[i]
		if !include(a.Quality) {
			continue
		}
		dataset.Entries = append(dataset.Entries, RAGEntry{
			Text: assetText(a),
			Metadata: map[string]string{
				"entity_id":     a.ID,
				"entity_type":   string(model.EntityAsset),
				"source_file":   result.SourceFile,
				"quality_level": string(a.Quality.Level),
			},
		})
	}
	for i := range result.Submodels {
		sm := &result.Submodels[i]
		if !include(sm.Quality) {
			continue
		}
		dataset.Entries = append(dataset.Entries, RAGEntry{
			Text: submodelText(sm),
			Metadata: map[string]string{
				"entity_id":     sm.ID,
				"entity_type":   string(model.EntitySubmodel),
				"source_file":   result.SourceFile,
				"quality_level": string(sm.Quality.Level),
			},
		})
	}
	for i := range result.Documents {
		d := &result.Documents[i]
		if d.Text == "" || !include(d.Quality) {
			continue
		}
		dataset.Entries = append(dataset.Entries, RAGEntry{
			Text: d.Text,
			Metadata: map[string]string{
				"entity_id":     "doc:" + d.Filename,
				"entity_type":   string(model.EntityDocument),
				"source_file":   result.SourceFile,
				"quality_level": string(d.Quality.Level),
			},
		})
	}
	return dataset
}

// WriteRAGDataset writes the dataset artifact and returns its path.
func WriteRAGDataset(outputDir, baseName string, dataset *RAGDataset, backup bool) (string, error) {
	payload, err := json.MarshalIndent(dataset, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal RAG dataset: %w", err)
	}
	path := filepath.Join(outputDir, baseName+".rag.json")
	if err := writeArtifact(path, payload, backup); err != nil {
		return "", err
	}
	return path, nil
}
