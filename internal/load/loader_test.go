package load

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinlift/twinlift/internal/model"
)

// Test Plan for Load Fan-Out:
// - A missing vector backend yields BackendUnavailable for "vector" while
//   relational writes still land (database_records > 0, vector_embeddings = 0)
// - A failing write yields WriteFailure for that backend only
// - File artifacts are written per payload plus graph and RAG exports
// - The RAG dataset contains only entities at or above the threshold
// - Backup mode preserves the previous artifact as .bak
// - Search on an unavailable vector backend returns BackendUnavailable

type fakeRows struct {
	records int
	fail    bool
}

func (f *fakeRows) UpsertResult(result *model.ExtractionResult) (int, error) {
	if f.fail {
		return 0, fmt.Errorf("disk full")
	}
	n := result.EntityCount() + len(result.Documents)
	f.records += n
	return n, nil
}

func (f *fakeRows) Ping() error  { return nil }
func (f *fakeRows) Close() error { return nil }

type fakeVectors struct {
	embeddings int
}

func (f *fakeVectors) IndexResult(ctx context.Context, result *model.ExtractionResult) (int, error) {
	n := result.EntityCount()
	f.embeddings += n
	return n, nil
}

func (f *fakeVectors) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	return nil, nil
}

func (f *fakeVectors) Close() error { return nil }

func scoredResult() *model.ExtractionResult {
	high := &model.QualityRecord{Score: 0.91, Level: model.QualityHigh, Compliance: model.Compliant}
	low := &model.QualityRecord{Score: 0.35, Level: model.QualityLow, Compliance: model.NonCompliant, BelowThreshold: true}
	return &model.ExtractionResult{
		SourceFile: "packages/line-3.zip",
		Tier:       "tier3",
		Assets: []model.Asset{
			{ID: "urn:asset:1", ShortID: "Pump", Description: "Hydraulic pump", Kind: "Instance", Quality: high},
		},
		Submodels: []model.Submodel{
			{ID: "urn:sm:1", ShortID: "Certification", Kind: "Instance", AssetID: "urn:asset:1", Quality: high},
			{ID: "urn:sm:2", ShortID: "Sparse", Quality: low},
		},
	}
}

func transformResult() *model.TransformResult {
	return &model.TransformResult{
		Payloads: map[string][]byte{
			"json": []byte(`{"assets":[]}`),
			"csv":  []byte("entity_type,id\n"),
		},
		Graph: &model.GraphExport{
			Nodes: []model.GraphNode{{ID: "urn:asset:1", Type: "asset"}},
		},
		Extraction: scoredResult(),
		Success:    true,
	}
}

func TestLoad_VectorBackendOffline(t *testing.T) {
	t.Parallel()

	rows := &fakeRows{}
	loader := NewWithBackends(rows, nil, t.TempDir(), 0.8)

	out := loader.Load(context.Background(), transformResult())

	require.True(t, out.Backends[BackendRelational].Success)
	assert.Greater(t, out.DatabaseRecords, 0)

	vec := out.Backends[BackendVector]
	require.False(t, vec.Success)
	assert.Equal(t, model.ErrBackendUnavailable, vec.Code)
	assert.Equal(t, 0, out.VectorEmbeddings)

	assert.False(t, out.Succeeded())
}

func TestLoad_RelationalWriteFailureIsIsolated(t *testing.T) {
	t.Parallel()

	vectors := &fakeVectors{}
	loader := NewWithBackends(&fakeRows{fail: true}, vectors, t.TempDir(), 0.8)

	out := loader.Load(context.Background(), transformResult())

	rel := out.Backends[BackendRelational]
	require.False(t, rel.Success)
	assert.Equal(t, model.ErrWriteFailure, rel.Code)
	assert.Equal(t, 0, out.DatabaseRecords)

	// The vector backend still committed.
	assert.True(t, out.Backends[BackendVector].Success)
	assert.Greater(t, out.VectorEmbeddings, 0)
}

func TestLoad_WritesFileArtifacts(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	loader := NewWithBackends(&fakeRows{}, &fakeVectors{}, outDir, 0.8)

	out := loader.Load(context.Background(), transformResult())
	require.True(t, out.Backends[BackendFiles].Success)

	// json + csv payloads, graph export, RAG dataset.
	assert.Equal(t, 4, out.FilesExported)
	for _, name := range []string{"line-3.json", "line-3.csv", "line-3.graph.json", "line-3.rag.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestBuildRAGDataset_FiltersByQuality(t *testing.T) {
	t.Parallel()

	dataset := BuildRAGDataset(scoredResult(), 0.8)

	require.Len(t, dataset.Entries, 2)
	ids := []string{dataset.Entries[0].Metadata["entity_id"], dataset.Entries[1].Metadata["entity_id"]}
	assert.Contains(t, ids, "urn:asset:1")
	assert.Contains(t, ids, "urn:sm:1")
	for _, entry := range dataset.Entries {
		assert.NotEmpty(t, entry.Text)
		assert.Equal(t, "HIGH", entry.Metadata["quality_level"])
	}
}

func TestWriteArtifact_BackupKeepsPreviousVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "line-3.json")

	require.NoError(t, writeArtifact(path, []byte("v1"), true))
	require.NoError(t, writeArtifact(path, []byte("v2"), true))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(current))

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, "v1", string(backup))
}

func TestSearch_UnavailableVectorBackend(t *testing.T) {
	t.Parallel()

	loader := NewWithBackends(&fakeRows{}, nil, t.TempDir(), 0.8)

	_, err := loader.Search(context.Background(), "pump", 5)
	require.Error(t, err)
	assert.Equal(t, model.ErrBackendUnavailable, model.CodeOf(err))
}
