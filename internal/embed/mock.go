package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// mockProvider generates deterministic embeddings by hashing the input
// text. Used for tests and for offline runs where no embedding service
// is reachable; identical text always maps to the identical vector.
type mockProvider struct {
	dimensions int
}

// NewMockProvider creates a deterministic hash-based embedding provider.
func NewMockProvider(dimensions int) Provider {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &mockProvider{dimensions: dimensions}
}

func (p *mockProvider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hash := sha256.Sum256([]byte(text))

		embedding := make([]float32, p.dimensions)
		for j := 0; j < p.dimensions; j++ {
			offset := (j * 4) % (len(hash) - 4)
			val := binary.BigEndian.Uint32(hash[offset : offset+4])
			// Normalize to [-1, 1] range
			embedding[j] = (float32(val)/float32(1<<32))*2.0 - 1.0
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

func (p *mockProvider) Dimensions() int {
	return p.dimensions
}

func (p *mockProvider) Close() error {
	return nil
}
