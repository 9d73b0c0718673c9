package storage

import (
	"context"

	"github.com/poiesic/cardvec/core"
)

// ResultWriter persists a complete set of embedding results.
type ResultWriter interface {
	// WriteResults replaces the sink's contents with results, in the given order.
	// Results are validated before anything is written.
	WriteResults(ctx context.Context, results []core.EmbeddingResult) error
}

// ResultReader loads a previously written set of embedding results.
type ResultReader interface {
	// ReadResults returns all stored results in the order they were written.
	ReadResults(ctx context.Context) ([]core.EmbeddingResult, error)
}

// SimilarityFinder ranks stored vectors against a query vector.
type SimilarityFinder interface {
	// FindSimilar returns up to limit results with similarity >= minSimilarity,
	// highest score first. Entries named in exclude are skipped.
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, exclude ...string) ([]core.SearchResult, error)
}

// Index is a keyed vector store that can also stand in for the lookup file.
// Implementations must be thread-safe.
type Index interface {
	ResultWriter
	ResultReader
	SimilarityFinder

	// Lookup returns the stored entry for name.
	// Returns ErrNotFound if the model was not indexed.
	Lookup(ctx context.Context, name string) (*VectorEntry, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
