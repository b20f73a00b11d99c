package load

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twinlift/twinlift/internal/model"
)

// Test Plan for SQLite Row Store:
// - NewRowStore creates the database file and schema
// - UpsertResult writes one row per entity and returns the count
// - Rerunning the same result leaves the same rows (idempotent upsert)
// - Submodel elements and documents land in their own tables
// - Unscored entities store NULL quality columns

func openTestStore(t *testing.T) (RowWriter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "twins.db")
	store, err := NewRowStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func countRows(t *testing.T, path, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRowStore_UpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	store, path := openTestStore(t)
	result := scoredResult()
	result.Submodels[0].Elements = []model.SubmodelElement{
		{Name: "MaxPressure", Value: "250", Unit: "bar"},
	}
	result.Documents = []model.Document{
		{Filename: "manual.pdf", Size: 2048, Type: "application/pdf"},
	}

	records, err := store.UpsertResult(result)
	require.NoError(t, err)
	assert.Equal(t, 4, records) // 1 asset + 2 submodels + 1 document

	assert.Equal(t, 3, countRows(t, path, "entities"))
	assert.Equal(t, 1, countRows(t, path, "submodel_elements"))
	assert.Equal(t, 1, countRows(t, path, "documents"))

	// Rerunning on the unmodified result changes nothing.
	records, err = store.UpsertResult(result)
	require.NoError(t, err)
	assert.Equal(t, 4, records)
	assert.Equal(t, 3, countRows(t, path, "entities"))
	assert.Equal(t, 1, countRows(t, path, "submodel_elements"))
	assert.Equal(t, 1, countRows(t, path, "documents"))
}

func TestRowStore_NullQualityForUnscoredEntities(t *testing.T) {
	t.Parallel()

	store, path := openTestStore(t)
	result := &model.ExtractionResult{
		SourceFile: "line-3.zip",
		Tier:       "tier3",
		Assets:     []model.Asset{{ID: "urn:asset:raw", ShortID: "Raw"}},
	}

	_, err := store.UpsertResult(result)
	require.NoError(t, err)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var level sql.NullString
	var score sql.NullFloat64
	require.NoError(t, db.QueryRow(
		"SELECT quality_level, score FROM entities WHERE entity_id = ?", "urn:asset:raw").
		Scan(&level, &score))
	assert.False(t, level.Valid)
	assert.False(t, score.Valid)
}
