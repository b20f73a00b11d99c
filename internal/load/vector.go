package load

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/maypok86/otter"
	"github.com/philippgille/chromem-go"

	"github.com/twinlift/twinlift/internal/embed"
	"github.com/twinlift/twinlift/internal/model"
)

const (
	vectorCollection = "twinlift"
	// embedCacheSize bounds the text-hash → vector cache. Packages from
	// the same product line repeat descriptions heavily.
	embedCacheSize = 8192
)

// VectorIndexer is the vector persistence boundary of the loader.
type VectorIndexer interface {
	// IndexResult chunks and embeds every entity of the result and stores
	// (vector, text, metadata) triples. Returns the embedding count.
	IndexResult(ctx context.Context, result *model.ExtractionResult) (int, error)
	// Search runs a nearest-neighbor query and returns up to topK results
	// with similarity scores.
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)
	Close() error
}

// SearchResult is one nearest-neighbor match.
type SearchResult struct {
	EntityID   string            `json:"entity_id"`
	Text       string            `json:"text"`
	Similarity float32           `json:"similarity"`
	Metadata   map[string]string `json:"metadata"`
}

// vectorStore persists embeddings in a chromem-go collection on disk.
// An otter cache keyed by text hash avoids re-embedding duplicate text.
type vectorStore struct {
	db         *chromem.DB
	collection *chromem.Collection
	provider   embed.Provider
	chunker    *Chunker
	cache      otter.Cache[string, []float32]
}

// NewVectorStore opens (or creates) the persistent vector database at
// path.
func NewVectorStore(path string, provider embed.Provider, chunker *Chunker) (VectorIndexer, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector database: %w", err)
	}

	collection, err := db.GetOrCreateCollection(vectorCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}

	cache, err := otter.MustBuilder[string, []float32](embedCacheSize).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding cache: %w", err)
	}

	return &vectorStore{
		db:         db,
		collection: collection,
		provider:   provider,
		chunker:    chunker,
		cache:      cache,
	}, nil
}

// IndexResult builds one text document per entity, splits it into
// overlapping chunks, embeds each chunk, and stores the triples.
func (v *vectorStore) IndexResult(ctx context.Context, result *model.ExtractionResult) (int, error) {
	records := buildEmbeddingRecords(result, v.chunker)
	if len(records) == 0 {
		return 0, nil
	}

	if err := v.embedRecords(ctx, records); err != nil {
		return 0, err
	}

	for i, rec := range records {
		doc := chromem.Document{
			ID:        fmt.Sprintf("%s#%d", rec.EntityID, i),
			Content:   rec.ChunkText,
			Embedding: rec.Vector,
			Metadata:  rec.Metadata,
		}
		if err := v.collection.AddDocument(ctx, doc); err != nil {
			return 0, fmt.Errorf("failed to store embedding for %s: %w", rec.EntityID, err)
		}
	}
	return len(records), nil
}

// embedRecords fills vectors, hitting the cache first and embedding only
// cache misses in one provider call.
func (v *vectorStore) embedRecords(ctx context.Context, records []model.EmbeddingRecord) error {
	var missTexts []string
	var missIdx []int
	for i := range records {
		key := textHash(records[i].ChunkText)
		if vec, ok := v.cache.Get(key); ok {
			records[i].Vector = vec
			continue
		}
		missTexts = append(missTexts, records[i].ChunkText)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return nil
	}

	vectors, err := v.provider.Embed(ctx, missTexts)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(missTexts) {
		return fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(missTexts))
	}

	for j, i := range missIdx {
		records[i].Vector = vectors[j]
		v.cache.Set(textHash(records[i].ChunkText), vectors[j])
	}
	return nil
}

// Search embeds the query and runs a nearest-neighbor lookup.
func (v *vectorStore) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}
	// chromem rejects nResults above the collection size.
	if count := v.collection.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}

	vectors, err := v.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	docs, err := v.collection.QueryEmbedding(ctx, vectors[0], topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		results = append(results, SearchResult{
			EntityID:   doc.Metadata["entity_id"],
			Text:       doc.Content,
			Similarity: doc.Similarity,
			Metadata:   doc.Metadata,
		})
	}
	return results, nil
}

func (v *vectorStore) Close() error {
	v.cache.Close()
	return nil
}

// buildEmbeddingRecords flattens every entity into chunked embedding
// records with identifying metadata.
func buildEmbeddingRecords(result *model.ExtractionResult, chunker *Chunker) []model.EmbeddingRecord {
	var records []model.EmbeddingRecord

	appendChunks := func(entityID, entityType, text string) {
		for idx, chunk := range chunker.Chunk(text) {
			records = append(records, model.EmbeddingRecord{
				ChunkText: chunk,
				EntityID:  entityID,
				Metadata: map[string]string{
					"entity_id":   entityID,
					"entity_type": entityType,
					"source_file": result.SourceFile,
					"chunk_index": strconv.Itoa(idx),
				},
			})
		}
	}

	for i := range result.Assets {
		a := &result.Assets[i]
		appendChunks(a.ID, string(model.EntityAsset), assetText(a))
	}
	for i := range result.Submodels {
		sm := &result.Submodels[i]
		appendChunks(sm.ID, string(model.EntitySubmodel), submodelText(sm))
	}
	for i := range result.Documents {
		d := &result.Documents[i]
		if d.Text == "" {
			continue
		}
		appendChunks("doc:"+d.Filename, string(model.EntityDocument), d.Text)
	}
	return records
}

// assetText builds the searchable document for an asset from its
// identifying fields and description.
func assetText(a *model.Asset) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Asset %s (%s)", a.ShortID, a.ID)
	if a.Kind != "" {
		fmt.Fprintf(&b, " kind=%s", a.Kind)
	}
	if a.Description != "" {
		fmt.Fprintf(&b, ": %s", a.Description)
	}
	return b.String()
}

func submodelText(sm *model.Submodel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Submodel %s (%s)", sm.ShortID, sm.ID)
	if sm.Kind != "" {
		fmt.Fprintf(&b, " kind=%s", sm.Kind)
	}
	if sm.Description != "" {
		fmt.Fprintf(&b, ": %s", sm.Description)
	}
	for i := range sm.Elements {
		el := &sm.Elements[i]
		fmt.Fprintf(&b, "\n%s = %s", el.Name, el.Value)
		if el.Unit != "" {
			fmt.Fprintf(&b, " %s", el.Unit)
		}
	}
	return b.String()
}

func textHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
