package load

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Chunking:
// - NewChunker rejects overlap >= size and negative overlap
// - Empty text yields no chunks
// - Text shorter than the chunk size yields exactly one chunk
// - Longer text yields ceil((L-O)/(C-O)) chunks
// - Consecutive chunks share exactly the configured overlap
// - Every rune of the input is covered by some chunk
// - Multi-byte runes are never split

func TestNewChunker_RejectsInvalidOverlap(t *testing.T) {
	t.Parallel()

	_, err := NewChunker(100, 100)
	assert.Error(t, err)
	_, err = NewChunker(100, 150)
	assert.Error(t, err)
	_, err = NewChunker(100, -1)
	assert.Error(t, err)
	_, err = NewChunker(0, 0)
	assert.Error(t, err)

	_, err = NewChunker(100, 0)
	assert.NoError(t, err)
}

func TestChunk_EdgeSizes(t *testing.T) {
	t.Parallel()

	c, err := NewChunker(10, 3)
	require.NoError(t, err)

	assert.Nil(t, c.Chunk(""))
	assert.Equal(t, []string{"short"}, c.Chunk("short"))
	assert.Equal(t, []string{"exactlyten"}, c.Chunk("exactlyten"))
}

func TestChunk_CountMatchesFormula(t *testing.T) {
	t.Parallel()

	cases := []struct {
		length  int
		size    int
		overlap int
		want    int
	}{
		{length: 100, size: 10, overlap: 0, want: 10},
		{length: 100, size: 10, overlap: 3, want: 14}, // ceil(97/7)
		{length: 101, size: 10, overlap: 3, want: 14},
		{length: 102, size: 10, overlap: 3, want: 15},
		{length: 11, size: 10, overlap: 3, want: 2},
		{length: 512, size: 512, overlap: 64, want: 1},
		{length: 513, size: 512, overlap: 64, want: 2},
	}
	for _, tc := range cases {
		c, err := NewChunker(tc.size, tc.overlap)
		require.NoError(t, err)
		chunks := c.Chunk(strings.Repeat("a", tc.length))
		assert.Len(t, chunks, tc.want, "length %d size %d overlap %d", tc.length, tc.size, tc.overlap)
	}
}

func TestChunk_OverlapAndCoverage(t *testing.T) {
	t.Parallel()

	c, err := NewChunker(10, 4)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz0123456789"
	chunks := c.Chunk(text)
	require.Greater(t, len(chunks), 1)

	// Consecutive chunks share the configured overlap.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-4:])
		assert.True(t, strings.HasPrefix(chunks[i], tail),
			"chunk %d must start with the last 4 runes of chunk %d", i, i-1)
	}

	// Concatenating with the overlap removed restores the input.
	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0])
	for i := 1; i < len(chunks); i++ {
		runes := []rune(chunks[i])
		rebuilt.WriteString(string(runes[4:]))
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestChunk_MultiByteRunes(t *testing.T) {
	t.Parallel()

	c, err := NewChunker(4, 1)
	require.NoError(t, err)

	text := "日本語のテキストです"
	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		assert.True(t, len([]rune(chunk)) <= 4)
		assert.Equal(t, chunk, string([]rune(chunk)), "chunks must split on rune boundaries")
	}
}
