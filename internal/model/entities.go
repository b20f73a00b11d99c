package model

import "time"

// EntityType identifies the kind of an extracted entity.
type EntityType string

const (
	EntityAsset    EntityType = "asset"
	EntitySubmodel EntityType = "submodel"
	EntityDocument EntityType = "document"
)

// Asset is the digital identity of a physical or logical entity.
// IDs are URI-like strings and unique within a processing run.
type Asset struct {
	ID          string     `json:"id" yaml:"id"`
	ShortID     string     `json:"idShort" yaml:"idShort"`
	Description string     `json:"description" yaml:"description"`
	Kind        string     `json:"kind" yaml:"kind"`
	Provenance  Provenance `json:"provenance" yaml:"provenance"`

	// Filled by the transformer. Nil until scoring runs.
	Quality *QualityRecord `json:"quality,omitempty" yaml:"quality,omitempty"`
	// Additive enrichment fields. Never overwrite extracted values.
	Enrichment map[string]string `json:"enrichment,omitempty" yaml:"enrichment,omitempty"`
}

// Submodel is a modular structured data block owned by exactly one Asset.
type Submodel struct {
	ID          string            `json:"id" yaml:"id"`
	ShortID     string            `json:"idShort" yaml:"idShort"`
	Description string            `json:"description" yaml:"description"`
	Kind        string            `json:"kind" yaml:"kind"`
	AssetID     string            `json:"assetId" yaml:"assetId"`
	Elements    []SubmodelElement `json:"elements,omitempty" yaml:"elements,omitempty"`
	Provenance  Provenance        `json:"provenance" yaml:"provenance"`

	Quality    *QualityRecord    `json:"quality,omitempty" yaml:"quality,omitempty"`
	Enrichment map[string]string `json:"enrichment,omitempty" yaml:"enrichment,omitempty"`
}

// SubmodelElement is a leaf property of a Submodel.
type SubmodelElement struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Unit        string `json:"unit,omitempty" yaml:"unit,omitempty"`
	SemanticRef string `json:"semanticRef,omitempty" yaml:"semanticRef,omitempty"`
}

// Document is an embedded attachment of the package.
type Document struct {
	Filename string `json:"filename" yaml:"filename"`
	Size     int64  `json:"size" yaml:"size"`
	Type     string `json:"type" yaml:"type"`
	// Text content of the document when a text extractor could read it.
	// Used for the RAG dataset export; empty for binary formats.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	Quality *QualityRecord `json:"quality,omitempty" yaml:"quality,omitempty"`
}

// Provenance records where an entity came from and how it was extracted.
type Provenance struct {
	SourceFile string `json:"sourceFile" yaml:"sourceFile"`
	Tier       string `json:"tier" yaml:"tier"`
	Format     string `json:"format,omitempty" yaml:"format,omitempty"`
}

// QualityLevel is the derived categorical completeness assessment.
type QualityLevel string

const (
	QualityLow    QualityLevel = "LOW"
	QualityMedium QualityLevel = "MEDIUM"
	QualityHigh   QualityLevel = "HIGH"
)

// ComplianceStatus is the derived compliance assessment.
type ComplianceStatus string

const (
	Compliant    ComplianceStatus = "COMPLIANT"
	Partial      ComplianceStatus = "PARTIAL"
	NonCompliant ComplianceStatus = "NON_COMPLIANT"
)

// QualityRecord is derived per entity by the transformer. Never hand-edited.
type QualityRecord struct {
	Score            float64          `json:"score" yaml:"score"`
	Level            QualityLevel     `json:"quality_level" yaml:"quality_level"`
	Compliance       ComplianceStatus `json:"compliance_status" yaml:"compliance_status"`
	BelowThreshold   bool             `json:"below_threshold" yaml:"below_threshold"`
	PopulatedFields  int              `json:"populated_fields" yaml:"populated_fields"`
	RequiredFields   int              `json:"required_fields" yaml:"required_fields"`
	ComplianceSignal float64          `json:"compliance_signal" yaml:"compliance_signal"`
}

// EmbeddingRecord is one chunk of entity text with its vector.
type EmbeddingRecord struct {
	ChunkText string            `json:"chunk_text"`
	Vector    []float32         `json:"vector"`
	EntityID  string            `json:"entity_id"`
	Metadata  map[string]string `json:"metadata"`
}

// ExtractionResult is the normalized output of the extract phase.
type ExtractionResult struct {
	Assets     []Asset    `json:"assets" yaml:"assets"`
	Submodels  []Submodel `json:"submodels" yaml:"submodels"`
	Documents  []Document `json:"documents" yaml:"documents"`
	SourceFile string     `json:"sourceFile" yaml:"sourceFile"`
	// Tier that produced the result ("tier1", "tier2", "tier3").
	Tier string `json:"tier" yaml:"tier"`
	// Elapsed time per tier attempted, keyed by tier name.
	TierTimings map[string]time.Duration `json:"tierTimings,omitempty" yaml:"tierTimings,omitempty"`
	// Errors recovered by fallback (ParseFailure, Tier1Timeout). Informational.
	TierErrors []string `json:"tierErrors,omitempty" yaml:"tierErrors,omitempty"`
}

// EntityCount returns the number of top-level entities (assets + submodels).
func (r *ExtractionResult) EntityCount() int {
	return len(r.Assets) + len(r.Submodels)
}
