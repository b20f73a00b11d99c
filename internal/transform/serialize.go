package transform

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/twinlift/twinlift/internal/model"
)

// NestedDocument is the lossless nested serialization of a decorated
// entity set (the "json" and "yaml" formats). Parsing it back preserves
// entity counts and quality records exactly.
type NestedDocument struct {
	Metadata  NestedMetadata   `json:"metadata" yaml:"metadata"`
	Assets    []model.Asset    `json:"assets" yaml:"assets"`
	Submodels []model.Submodel `json:"submodels" yaml:"submodels"`
	Documents []model.Document `json:"documents" yaml:"documents"`
}

// NestedMetadata describes the serialized entity set.
type NestedMetadata struct {
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	SourceFile  string    `json:"source_file" yaml:"source_file"`
	Tier        string    `json:"tier" yaml:"tier"`
	EntityCount int       `json:"entity_count" yaml:"entity_count"`
}

// csvColumns is the stable column order of the flattened tabular format.
var csvColumns = []string{
	"entity_type", "id", "short_id", "description", "kind",
	"quality_level", "compliance_status", "score",
}

type serializeFunc func(*model.ExtractionResult) ([]byte, error)

// formats maps format names to their serializers. graph is handled
// separately by the transformer because it also populates the typed
// graph view.
var formats = map[string]serializeFunc{
	"json": serializeJSON,
	"yaml": serializeYAML,
	"csv":  serializeCSV,
}

func nestedDocument(result *model.ExtractionResult) *NestedDocument {
	return &NestedDocument{
		Metadata: NestedMetadata{
			GeneratedAt: time.Now().UTC(),
			SourceFile:  result.SourceFile,
			Tier:        result.Tier,
			EntityCount: result.EntityCount(),
		},
		Assets:    result.Assets,
		Submodels: result.Submodels,
		Documents: result.Documents,
	}
}

func serializeJSON(result *model.ExtractionResult) ([]byte, error) {
	data, err := json.MarshalIndent(nestedDocument(result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nested document: %w", err)
	}
	return data, nil
}

func serializeYAML(result *model.ExtractionResult) ([]byte, error) {
	data, err := yaml.Marshal(nestedDocument(result))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal nested document: %w", err)
	}
	return data, nil
}

// ParseNestedJSON parses a "json" format payload back into a document.
// Round-tripping preserves entity counts and quality records.
func ParseNestedJSON(data []byte) (*NestedDocument, error) {
	var doc NestedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse nested document: %w", err)
	}
	return &doc, nil
}

// serializeCSV flattens the entity set to one row per entity with a
// header row and stable column order.
func serializeCSV(result *model.ExtractionResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range result.Assets {
		a := &result.Assets[i]
		if err := w.Write(csvRow("asset", a.ID, a.ShortID, a.Description, a.Kind, a.Quality)); err != nil {
			return nil, fmt.Errorf("failed to write asset row: %w", err)
		}
	}
	for i := range result.Submodels {
		sm := &result.Submodels[i]
		if err := w.Write(csvRow("submodel", sm.ID, sm.ShortID, sm.Description, sm.Kind, sm.Quality)); err != nil {
			return nil, fmt.Errorf("failed to write submodel row: %w", err)
		}
	}
	for i := range result.Documents {
		d := &result.Documents[i]
		if err := w.Write(csvRow("document", d.Filename, "", "", d.Type, d.Quality)); err != nil {
			return nil, fmt.Errorf("failed to write document row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

func csvRow(entityType, id, shortID, description, kind string, q *model.QualityRecord) []string {
	level, compliance, score := "", "", ""
	if q != nil {
		level = string(q.Level)
		compliance = string(q.Compliance)
		score = strconv.FormatFloat(q.Score, 'f', 4, 64)
	}
	return []string{entityType, id, shortID, description, kind, level, compliance, score}
}
