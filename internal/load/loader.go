// Package load fans transformed results out to independent backends:
// a SQLite row store, a chromem-go vector index, and file artifacts
// (per-format payloads, graph export, RAG dataset). One backend failing
// never blocks or rolls back another backend's writes.
package load

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/twinlift/twinlift/internal/config"
	"github.com/twinlift/twinlift/internal/embed"
	"github.com/twinlift/twinlift/internal/model"
)

// Backend names used in the per-backend status map.
const (
	BackendRelational = "relational"
	BackendVector     = "vector"
	BackendFiles      = "files"
)

// Loader persists transformed results. Backends that failed to open are
// kept as recorded errors so each Load reports them as unavailable
// instead of failing outright.
type Loader struct {
	rows    RowWriter
	rowsErr error

	vectors    VectorIndexer
	vectorsErr error

	outputDir  string
	minQuality float64
	backup     bool
}

// New opens all backends. Backend open failures do not fail construction;
// they surface per file as BackendUnavailable statuses.
func New(storage config.StorageConfig, transform config.TransformConfig, pipeline config.PipelineConfig, provider embed.Provider, chunker *Chunker) *Loader {
	l := &Loader{
		outputDir:  storage.OutputDirectory,
		minQuality: transform.QualityThreshold,
		backup:     pipeline.EnableBackup,
	}

	l.rows, l.rowsErr = NewRowStore(storage.DatabasePath)
	l.vectors, l.vectorsErr = NewVectorStore(storage.VectorDBPath, provider, chunker)
	return l
}

// NewWithBackends builds a loader over explicit backends. Used by tests
// and callers substituting their own stores. A nil backend is treated as
// unavailable.
func NewWithBackends(rows RowWriter, vectors VectorIndexer, outputDir string, minQuality float64) *Loader {
	l := &Loader{
		rows:       rows,
		vectors:    vectors,
		outputDir:  outputDir,
		minQuality: minQuality,
	}
	if rows == nil {
		l.rowsErr = fmt.Errorf("row store not configured")
	}
	if vectors == nil {
		l.vectorsErr = fmt.Errorf("vector store not configured")
	}
	return l
}

// Load persists one transformed result to every backend and reports
// per-backend outcomes. Backends are attempted independently; the
// returned result never carries an error, only statuses.
func (l *Loader) Load(ctx context.Context, tr *model.TransformResult) *model.LoadResult {
	out := &model.LoadResult{
		Backends: make(map[string]model.BackendStatus),
	}
	result := tr.Extraction
	base := artifactBase(result.SourceFile)

	// Relational backend.
	switch {
	case l.rowsErr != nil:
		out.Backends[BackendRelational] = backendFailure(BackendRelational, model.ErrBackendUnavailable, l.rowsErr)
	default:
		records, err := l.rows.UpsertResult(result)
		if err != nil {
			out.Backends[BackendRelational] = backendFailure(BackendRelational, model.ErrWriteFailure, err)
		} else {
			out.DatabaseRecords = records
			out.Backends[BackendRelational] = model.BackendStatus{Name: BackendRelational, Success: true}
		}
	}

	// Vector backend.
	switch {
	case l.vectorsErr != nil:
		out.Backends[BackendVector] = backendFailure(BackendVector, model.ErrBackendUnavailable, l.vectorsErr)
	default:
		embeddings, err := l.vectors.IndexResult(ctx, result)
		if err != nil {
			out.Backends[BackendVector] = backendFailure(BackendVector, model.ErrWriteFailure, err)
		} else {
			out.VectorEmbeddings = embeddings
			out.Backends[BackendVector] = model.BackendStatus{Name: BackendVector, Success: true}
		}
	}

	// File artifacts: per-format payloads, graph export, RAG dataset.
	var fileErr error
	for format, payload := range tr.Payloads {
		if format == "graph" {
			continue // written via WriteGraphExport below
		}
		path := filepath.Join(l.outputDir, base+"."+format)
		if err := writeArtifact(path, payload, l.backup); err != nil {
			fileErr = err
			continue
		}
		out.FilesExported++
	}
	if tr.Graph != nil {
		if _, err := WriteGraphExport(l.outputDir, base, tr.Graph, l.backup); err != nil {
			fileErr = err
		} else {
			out.FilesExported++
		}
	}
	if dataset := BuildRAGDataset(result, l.minQuality); len(dataset.Entries) > 0 {
		if _, err := WriteRAGDataset(l.outputDir, base, dataset, l.backup); err != nil {
			fileErr = err
		} else {
			out.FilesExported++
		}
	}
	if fileErr != nil {
		out.Backends[BackendFiles] = backendFailure(BackendFiles, model.ErrWriteFailure, fileErr)
	} else {
		out.Backends[BackendFiles] = model.BackendStatus{Name: BackendFiles, Success: true}
	}

	return out
}

// Search delegates a nearest-neighbor query to the vector backend.
func (l *Loader) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if l.vectorsErr != nil {
		return nil, model.NewError(model.ErrBackendUnavailable, "vector store", l.vectorsErr)
	}
	return l.vectors.Search(ctx, query, topK)
}

// Ping verifies backend reachability for pre-flight validation.
// Returned map is keyed by backend name; nil values mean reachable.
func (l *Loader) Ping() map[string]error {
	status := map[string]error{
		BackendRelational: l.rowsErr,
		BackendVector:     l.vectorsErr,
	}
	if l.rowsErr == nil {
		status[BackendRelational] = l.rows.Ping()
	}
	return status
}

// Close releases all open backends.
func (l *Loader) Close() error {
	var firstErr error
	if l.rows != nil {
		if err := l.rows.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.vectors != nil {
		if err := l.vectors.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func backendFailure(name string, code model.ErrorCode, err error) model.BackendStatus {
	return model.BackendStatus{
		Name:  name,
		Error: err.Error(),
		Code:  code,
	}
}

// artifactBase derives the artifact base name from the package filename.
func artifactBase(sourceFile string) string {
	base := filepath.Base(sourceFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
