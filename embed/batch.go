package embed

import (
	"context"
	"fmt"

	"github.com/poiesic/cardvec/ai"
	"github.com/poiesic/cardvec/core"
)

// BatchProcessor embeds a single batch of card items.
type BatchProcessor struct {
	embedder ai.Embedder
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(embedder ai.Embedder) *BatchProcessor {
	return &BatchProcessor{
		embedder: embedder,
	}
}

// Process sends the batch's texts in one request and pairs each returned
// vector with its item name, preserving order. offset is the index of the
// batch's first item in the whole input and is only used for error reporting.
// A response with a different number of vectors than items is a
// *core.BatchSizeMismatchError.
func (bp *BatchProcessor) Process(ctx context.Context, offset int, items []core.CardItem) ([]core.EmbeddingResult, error) {
	if len(items) == 0 {
		return nil, nil
	}

	// Extract text content
	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Text
	}

	vectors, err := bp.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(vectors) != len(items) {
		return nil, &core.BatchSizeMismatchError{
			Offset:   offset,
			Expected: len(items),
			Got:      len(vectors),
		}
	}

	results := make([]core.EmbeddingResult, len(items))
	for i, item := range items {
		vector := vectors[i]
		if vector == nil {
			// A missing vector is stored as an empty one
			vector = []float32{}
		}
		results[i] = core.EmbeddingResult{
			Name:      item.Name,
			Embedding: vector,
			Digest:    core.Digest(item.Text),
		}
	}
	return results, nil
}
