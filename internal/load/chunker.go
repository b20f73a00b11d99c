package load

import (
	"fmt"
)

// Chunker splits entity text into overlapping windows for embedding.
// For text of length L (runes), chunk size C, and overlap O (O < C),
// it produces ceil((L-O)/(C-O)) chunks and covers every position.
type Chunker struct {
	size    int
	overlap int
}

// NewChunker creates a chunker. Overlap must be strictly smaller than
// the chunk size or the window could never advance.
func NewChunker(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must satisfy 0 <= overlap < size, got %d (size %d)", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits text into overlapping windows. Empty text yields no chunks.
func (c *Chunker) Chunk(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= c.size {
		return []string{text}
	}

	stride := c.size - c.overlap
	var chunks []string
	for start := 0; start < len(runes); start += stride {
		end := start + c.size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
