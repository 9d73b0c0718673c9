package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in one request.
	// The returned slice contains embeddings in the same order as the input texts.
	// Implementations return whatever the service sent back; callers are
	// responsible for checking that the count matches len(texts).
	// Returns an error if the request fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
