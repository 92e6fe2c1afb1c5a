package document

import (
	"regexp"
	"strings"

	"ai-tutoring-be/internal/entity"
	"ai-tutoring-be/pkg/utils"

	"github.com/google/uuid"
)

const (
	// MaxChunkSize is the character budget of one chunk before the next split decision.
	MaxChunkSize = 4000
	// ChunkOverlap is the character budget of trailing units carried into the next chunk.
	ChunkOverlap = 200

	chunkConfidence = 1.0
)

// Boundary selects the unit a chunker never splits inside.
type Boundary int

const (
	BoundaryParagraph Boundary = iota // DOCX
	BoundaryWord                      // PDF
	BoundaryLine                      // TXT
)

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

func (b Boundary) separator() string {
	switch b {
	case BoundaryParagraph:
		return "\n\n"
	case BoundaryLine:
		return "\n"
	default:
		return " "
	}
}

func (b Boundary) units(text string) []string {
	var raw []string
	switch b {
	case BoundaryParagraph:
		raw = paragraphBreak.Split(text, -1)
	case BoundaryLine:
		raw = strings.Split(text, "\n")
	default:
		return utils.Words(text)
	}

	units := make([]string, 0, len(raw))
	for _, u := range raw {
		u = strings.TrimSpace(u)
		if u != "" {
			units = append(units, u)
		}
	}
	return units
}

// Chunker splits extracted text into bounded, overlapping chunks.
type Chunker struct {
	boundary Boundary
	maxSize  int
	overlap  int
	newID    func() string
}

type ChunkerOption func(*Chunker)

func WithMaxSize(n int) ChunkerOption {
	return func(c *Chunker) {
		if n > 0 {
			c.maxSize = n
		}
	}
}

func WithOverlap(n int) ChunkerOption {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

func NewChunker(boundary Boundary, opts ...ChunkerOption) *Chunker {
	c := &Chunker{
		boundary: boundary,
		maxSize:  MaxChunkSize,
		overlap:  ChunkOverlap,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk returns index-ordered chunks; empty or whitespace-only text yields none.
func (c *Chunker) Chunk(text string) []entity.DocumentContentChunk {
	units := c.explode(c.boundary.units(text))
	if len(units) == 0 {
		return nil
	}

	sep := c.boundary.separator()
	sepLen := utils.CharLen(sep)

	var (
		chunks  []entity.DocumentContentChunk
		current []string // units of the open buffer, seed included
		size    int
	)

	for _, unit := range units {
		unitLen := utils.CharLen(unit)
		grown := size + unitLen
		if len(current) > 0 {
			grown += sepLen
		}

		if grown > c.maxSize && len(current) > 0 {
			chunks = append(chunks, c.newChunk(strings.Join(current, sep), len(chunks)))
			current = c.seed(current, sepLen)
			size = joinedLen(current, sepLen)

			// A seed that cannot take the unit is dropped so no chunk is pure overlap.
			if len(current) > 0 && size+sepLen+unitLen > c.maxSize {
				current = nil
				size = 0
			}
		}

		if len(current) > 0 {
			size += sepLen
		}
		current = append(current, unit)
		size += unitLen
	}

	chunks = append(chunks, c.newChunk(strings.Join(current, sep), len(chunks)))
	return chunks
}

// seed picks the longest run of trailing units that fits in the overlap budget.
func (c *Chunker) seed(closed []string, sepLen int) []string {
	if c.overlap == 0 {
		return nil
	}
	total := 0
	start := len(closed)
	for i := len(closed) - 1; i >= 0; i-- {
		add := utils.CharLen(closed[i])
		if start < len(closed) {
			add += sepLen
		}
		if total+add > c.overlap {
			break
		}
		total += add
		start = i
	}
	if start == len(closed) {
		return nil
	}
	return append([]string(nil), closed[start:]...)
}

// explode splits oversized paragraph or line units on word boundaries.
func (c *Chunker) explode(units []string) []string {
	if c.boundary == BoundaryWord {
		return units
	}
	out := make([]string, 0, len(units))
	for _, u := range units {
		if utils.CharLen(u) <= c.maxSize {
			out = append(out, u)
			continue
		}
		var b strings.Builder
		n := 0
		for _, w := range utils.Words(u) {
			wl := utils.CharLen(w)
			if n > 0 && n+1+wl > c.maxSize {
				out = append(out, b.String())
				b.Reset()
				n = 0
			}
			if n > 0 {
				b.WriteByte(' ')
				n++
			}
			b.WriteString(w)
			n += wl
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}

func (c *Chunker) newChunk(content string, index int) entity.DocumentContentChunk {
	return entity.DocumentContentChunk{
		Id:          c.newID(),
		DocumentId:  "",
		ContentType: entity.ChunkContentType,
		Content:     content,
		ChunkIndex:  index,
		Metadata:    entity.ChunkMetadata{Confidence: chunkConfidence},
	}
}

func joinedLen(units []string, sepLen int) int {
	if len(units) == 0 {
		return 0
	}
	n := sepLen * (len(units) - 1)
	for _, u := range units {
		n += utils.CharLen(u)
	}
	return n
}
