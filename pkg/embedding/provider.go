package embedding

import "context"

// EmbeddingProvider turns a chunk of text into a unit-length vector.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
