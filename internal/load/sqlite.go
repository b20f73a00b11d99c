package load

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/twinlift/twinlift/internal/model"
)

// RowWriter is the relational persistence boundary of the loader.
type RowWriter interface {
	// UpsertResult writes one row per entity, keyed by entity id.
	// Returns the number of rows written.
	UpsertResult(result *model.ExtractionResult) (int, error)
	// Ping verifies the backend is reachable.
	Ping() error
	Close() error
}

// rowStore persists entities to SQLite, one row per entity, upserted by
// entity id. Indexed on entity type and quality level.
type rowStore struct {
	db *sql.DB
}

const createEntitiesTable = `
	CREATE TABLE IF NOT EXISTS entities (
		entity_id         TEXT PRIMARY KEY,
		entity_type       TEXT NOT NULL,
		short_id          TEXT,
		description       TEXT,
		kind              TEXT,
		source_file       TEXT NOT NULL,
		tier              TEXT,
		quality_level     TEXT,
		compliance_status TEXT,
		score             REAL,
		updated_at        TEXT NOT NULL DEFAULT (datetime('now'))
	)`

const createElementsTable = `
	CREATE TABLE IF NOT EXISTS submodel_elements (
		submodel_id  TEXT NOT NULL REFERENCES entities(entity_id) ON DELETE CASCADE,
		name         TEXT NOT NULL,
		value        TEXT,
		unit         TEXT,
		semantic_ref TEXT,
		PRIMARY KEY (submodel_id, name)
	)`

const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS documents (
		filename      TEXT NOT NULL,
		source_file   TEXT NOT NULL,
		size          INTEGER NOT NULL,
		type          TEXT,
		quality_level TEXT,
		PRIMARY KEY (filename, source_file)
	)`

var rowIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type)`,
	`CREATE INDEX IF NOT EXISTS idx_entities_quality ON entities(quality_level)`,
}

// NewRowStore opens (or creates) the SQLite database at path and ensures
// the schema exists.
func NewRowStore(path string) (RowWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, ddl := range []string{createEntitiesTable, createElementsTable, createDocumentsTable} {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	for _, idx := range rowIndexes {
		if _, err := db.Exec(idx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return &rowStore{db: db}, nil
}

const upsertEntitySQL = `
	INSERT INTO entities
		(entity_id, entity_type, short_id, description, kind, source_file, tier,
		 quality_level, compliance_status, score, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT(entity_id) DO UPDATE SET
		entity_type       = excluded.entity_type,
		short_id          = excluded.short_id,
		description       = excluded.description,
		kind              = excluded.kind,
		source_file       = excluded.source_file,
		tier              = excluded.tier,
		quality_level     = excluded.quality_level,
		compliance_status = excluded.compliance_status,
		score             = excluded.score,
		updated_at        = datetime('now')`

// UpsertResult writes all entities of one extraction result in a single
// transaction. Rerunning on an unmodified file leaves identical rows.
func (s *rowStore) UpsertResult(result *model.ExtractionResult) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	entityStmt, err := tx.Prepare(upsertEntitySQL)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare entity upsert: %w", err)
	}
	defer entityStmt.Close()

	records := 0
	for i := range result.Assets {
		a := &result.Assets[i]
		level, compliance, score := qualityColumns(a.Quality)
		if _, err := entityStmt.Exec(a.ID, model.EntityAsset, a.ShortID, a.Description, a.Kind,
			result.SourceFile, result.Tier, level, compliance, score); err != nil {
			return 0, fmt.Errorf("failed to upsert asset %s: %w", a.ID, err)
		}
		records++
	}

	elementStmt, err := tx.Prepare(`
		INSERT INTO submodel_elements (submodel_id, name, value, unit, semantic_ref)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(submodel_id, name) DO UPDATE SET
			value = excluded.value, unit = excluded.unit, semantic_ref = excluded.semantic_ref`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare element upsert: %w", err)
	}
	defer elementStmt.Close()

	for i := range result.Submodels {
		sm := &result.Submodels[i]
		level, compliance, score := qualityColumns(sm.Quality)
		if _, err := entityStmt.Exec(sm.ID, model.EntitySubmodel, sm.ShortID, sm.Description, sm.Kind,
			result.SourceFile, result.Tier, level, compliance, score); err != nil {
			return 0, fmt.Errorf("failed to upsert submodel %s: %w", sm.ID, err)
		}
		records++
		for j := range sm.Elements {
			el := &sm.Elements[j]
			if _, err := elementStmt.Exec(sm.ID, el.Name, el.Value, el.Unit, el.SemanticRef); err != nil {
				return 0, fmt.Errorf("failed to upsert element %s/%s: %w", sm.ID, el.Name, err)
			}
		}
	}

	docStmt, err := tx.Prepare(`
		INSERT INTO documents (filename, source_file, size, type, quality_level)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(filename, source_file) DO UPDATE SET
			size = excluded.size, type = excluded.type, quality_level = excluded.quality_level`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare document upsert: %w", err)
	}
	defer docStmt.Close()

	for i := range result.Documents {
		d := &result.Documents[i]
		level, _, _ := qualityColumns(d.Quality)
		if _, err := docStmt.Exec(d.Filename, result.SourceFile, d.Size, d.Type, level); err != nil {
			return 0, fmt.Errorf("failed to upsert document %s: %w", d.Filename, err)
		}
		records++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return records, nil
}

func (s *rowStore) Ping() error {
	return s.db.Ping()
}

func (s *rowStore) Close() error {
	return s.db.Close()
}

func qualityColumns(q *model.QualityRecord) (level, compliance any, score any) {
	if q == nil {
		return nil, nil, nil
	}
	return string(q.Level), string(q.Compliance), q.Score
}
