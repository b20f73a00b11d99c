package model

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of one file moving through the pipeline.
// Transitions are strictly Pending → Extracting → Transforming → Loading
// → {Completed | Failed}. Completed and Failed are terminal.
type Status string

const (
	StatusPending      Status = "Pending"
	StatusExtracting   Status = "Extracting"
	StatusTransforming Status = "Transforming"
	StatusLoading      Status = "Loading"
	StatusCompleted    Status = "Completed"
	StatusFailed       Status = "Failed"
)

// next defines the single legal forward transition per non-terminal state.
var next = map[Status]Status{
	StatusPending:      StatusExtracting,
	StatusExtracting:   StatusTransforming,
	StatusTransforming: StatusLoading,
	StatusLoading:      StatusCompleted,
}

// Terminal reports whether s is a terminal state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ProcessingResult is the per-file pipeline outcome.
type ProcessingResult struct {
	ID         string                   `json:"id"`
	SourceFile string                   `json:"source_file"`
	Status     Status                   `json:"status"`
	Phase      string                   `json:"failed_phase,omitempty"`
	ErrorCode  ErrorCode                `json:"error_code,omitempty"`
	Error      string                   `json:"error,omitempty"`
	Timings    map[string]time.Duration `json:"timings"`
	StartedAt  time.Time                `json:"started_at"`
	FinishedAt time.Time                `json:"finished_at,omitempty"`
}

// NewProcessingResult creates a Pending result for the given file.
func NewProcessingResult(id, sourceFile string) *ProcessingResult {
	return &ProcessingResult{
		ID:         id,
		SourceFile: sourceFile,
		Status:     StatusPending,
		Timings:    make(map[string]time.Duration),
		StartedAt:  time.Now().UTC(),
	}
}

// Advance moves the result to its next lifecycle state.
// Returns an error on any transition out of a terminal state or
// any skip over the strict ordering.
func (r *ProcessingResult) Advance() error {
	n, ok := next[r.Status]
	if !ok {
		return fmt.Errorf("illegal transition from terminal state %s", r.Status)
	}
	r.Status = n
	if n == StatusCompleted {
		r.FinishedAt = time.Now().UTC()
	}
	return nil
}

// Fail marks the result Failed, recording the failing phase and error.
func (r *ProcessingResult) Fail(phase string, err error) {
	r.Status = StatusFailed
	r.Phase = phase
	r.ErrorCode = CodeOf(err)
	if err != nil {
		r.Error = err.Error()
	}
	r.FinishedAt = time.Now().UTC()
}

// TransformResult holds the per-format payloads produced by the transformer.
type TransformResult struct {
	// Payloads keyed by format name ("json", "yaml", "csv", "graph").
	Payloads map[string][]byte `json:"-"`
	// Graph view, populated when the graph format was requested.
	Graph *GraphExport `json:"graph,omitempty"`
	// FormatErrors holds per-format failures (UnknownFormat). Formats that
	// succeeded are unaffected.
	FormatErrors map[string]*PipelineError `json:"-"`
	// Entities after scoring and enrichment.
	Extraction *ExtractionResult `json:"extraction"`
	Success    bool              `json:"success"`
	// Number of transformations applied (scoring + enrichment + formats).
	TransformsApplied int `json:"transforms_applied"`
}

// BackendStatus is the per-backend outcome of the load phase.
type BackendStatus struct {
	Name    string    `json:"name"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
	Code    ErrorCode `json:"error_code,omitempty"`
}

// LoadResult reports what the loader persisted, per backend.
// One backend failing never rolls back another backend's writes.
type LoadResult struct {
	FilesExported    int                      `json:"files_exported"`
	DatabaseRecords  int                      `json:"database_records"`
	VectorEmbeddings int                      `json:"vector_embeddings"`
	Backends         map[string]BackendStatus `json:"backends"`
}

// Succeeded reports whether every attempted backend committed.
func (l *LoadResult) Succeeded() bool {
	for _, b := range l.Backends {
		if !b.Success {
			return false
		}
	}
	return true
}

// PipelineResponse is the structured result returned across the pipeline
// boundary. No bare error ever crosses it.
type PipelineResponse struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	ErrorCode ErrorCode `json:"error_code,omitempty"`
}
