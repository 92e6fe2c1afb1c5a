package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numberedWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("word%04d", i)
	}
	return strings.Join(words, " ")
}

// stripOverlap drops the longest prefix of cur that repeats a suffix of prev.
func stripOverlap(prev, cur []string) []string {
	max := len(prev)
	if len(cur) < max {
		max = len(cur)
	}
	for k := max; k > 0; k-- {
		if strings.Join(prev[len(prev)-k:], "\x00") == strings.Join(cur[:k], "\x00") {
			return cur[k:]
		}
	}
	return cur
}

func TestChunker_EmptyText(t *testing.T) {
	for _, b := range []Boundary{BoundaryParagraph, BoundaryWord, BoundaryLine} {
		c := NewChunker(b)
		assert.Empty(t, c.Chunk(""))
		assert.Empty(t, c.Chunk("   \n\n\t  \n"))
	}
}

func TestChunker_ShortTextSingleChunk(t *testing.T) {
	c := NewChunker(BoundaryWord)
	chunks := c.Chunk("a short note")

	require.Len(t, chunks, 1)
	assert.Equal(t, "a short note", chunks[0].Content)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "", chunks[0].DocumentId)
	assert.Equal(t, "chunk", chunks[0].ContentType)
	assert.Equal(t, 1.0, chunks[0].Metadata.Confidence)
	assert.NotEmpty(t, chunks[0].Id)
}

func TestChunker_SizeBoundAndIndices(t *testing.T) {
	text := numberedWords(3000) // ~27k characters
	chunks := NewChunker(BoundaryWord).Chunk(text)

	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
		assert.LessOrEqual(t, len(ch.Content), MaxChunkSize)
	}
}

func TestChunker_OverlapIsBounded(t *testing.T) {
	chunks := NewChunker(BoundaryWord).Chunk(numberedWords(3000))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Content)
		cur := strings.Fields(chunks[i].Content)
		rest := stripOverlap(prev, cur)
		overlap := strings.Join(cur[:len(cur)-len(rest)], " ")

		assert.NotEmpty(t, overlap, "chunk %d should start with overlap", i)
		assert.LessOrEqual(t, len(overlap), ChunkOverlap)
	}
}

func TestChunker_Reconstruction(t *testing.T) {
	tests := []struct {
		name     string
		boundary Boundary
		text     string
		split    func(string) []string
	}{
		{
			name:     "words",
			boundary: BoundaryWord,
			text:     numberedWords(2500),
			split:    strings.Fields,
		},
		{
			name:     "lines",
			boundary: BoundaryLine,
			text:     strings.ReplaceAll(numberedWords(2500), " ", "\n"),
			split: func(s string) []string {
				return strings.Split(s, "\n")
			},
		},
		{
			name:     "paragraphs",
			boundary: BoundaryParagraph,
			text: func() string {
				var paras []string
				for i := 0; i < 120; i++ {
					paras = append(paras, fmt.Sprintf("p%03d %s", i, strings.Repeat("x", 60)))
				}
				return strings.Join(paras, "\n\n")
			}(),
			split: func(s string) []string {
				return strings.Split(s, "\n\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := NewChunker(tt.boundary).Chunk(tt.text)
			require.Greater(t, len(chunks), 1)

			units := tt.split(chunks[0].Content)
			for i := 1; i < len(chunks); i++ {
				prev := tt.split(chunks[i-1].Content)
				units = append(units, stripOverlap(prev, tt.split(chunks[i].Content))...)
			}
			assert.Equal(t, tt.split(tt.text), units)
		})
	}
}

func TestChunker_NoOverlapJoinsBack(t *testing.T) {
	text := numberedWords(1200)
	chunks := NewChunker(BoundaryWord, WithOverlap(0)).Chunk(text)
	require.Greater(t, len(chunks), 1)

	parts := make([]string, len(chunks))
	for i, ch := range chunks {
		parts[i] = ch.Content
	}
	assert.Equal(t, text, strings.Join(parts, " "))
}

func TestChunker_OversizedParagraphIsSplit(t *testing.T) {
	long := numberedWords(1000) // one paragraph of ~9000 characters
	chunks := NewChunker(BoundaryParagraph).Chunk(long + "\n\nshort tail")

	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), MaxChunkSize)
	}
	assert.True(t, strings.HasSuffix(chunks[len(chunks)-1].Content, "short tail"))
}

func TestChunker_NeverEmitsPureOverlap(t *testing.T) {
	// Each line fits alone but no seed can precede it.
	line := strings.Repeat("y", 3990)
	text := strings.Join([]string{"tail words", line, line}, "\n")
	chunks := NewChunker(BoundaryLine).Chunk(text)

	require.Len(t, chunks, 3)
	assert.Equal(t, "tail words", chunks[0].Content)
	assert.Equal(t, line, chunks[1].Content)
	assert.Equal(t, line, chunks[2].Content)
}
