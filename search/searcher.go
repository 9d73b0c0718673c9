package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/cardvec/core"
	"github.com/poiesic/cardvec/storage"
)

// noThreshold accepts every cosine score, which lies in [-1, 1].
const noThreshold float32 = -1

// Searcher finds the models whose embeddings are closest to a given model's.
type Searcher struct {
	reader        storage.ResultReader
	minSimilarity float32
	logger        *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinSimilarity drops hits scoring below threshold.
// Default keeps every hit.
func WithMinSimilarity(threshold float32) Option {
	return func(s *Searcher) error {
		s.minSimilarity = threshold
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(reader storage.ResultReader, opts ...Option) (*Searcher, error) {
	if reader == nil {
		return nil, ErrReaderRequired
	}

	s := &Searcher{
		reader:        reader,
		minSimilarity: noThreshold,
		logger:        slog.Default().With("component", "search"),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Similar returns up to limit models most similar to the named model,
// highest score first. The named model itself is never included.
// Returns storage.ErrNotFound if name is not stored.
func (s *Searcher) Similar(ctx context.Context, name string, limit int) ([]core.SearchResult, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	if idx, ok := s.reader.(storage.Index); ok {
		entry, err := idx.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		s.logger.Debug("ranking via index", "name", name, "limit", limit)
		return idx.FindSimilar(ctx, entry.Embedding, s.minSimilarity, limit, name)
	}

	results, err := s.reader.ReadResults(ctx)
	if err != nil {
		return nil, err
	}

	target := slices.IndexFunc(results, func(r core.EmbeddingResult) bool {
		return r.Name == name
	})
	if target < 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}

	s.logger.Debug("ranking in memory", "name", name, "candidates", len(results)-1, "limit", limit)
	return Rank(results[target].Embedding, results, s.minSimilarity, limit, name), nil
}

// Rank scores every candidate against query by cosine similarity and returns
// up to limit hits with score >= minSimilarity, highest first. Ties are
// broken by name. Candidates named in exclude are skipped.
func Rank(query []float32, candidates []core.EmbeddingResult, minSimilarity float32, limit int, exclude ...string) []core.SearchResult {
	hits := make([]core.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		if slices.Contains(exclude, c.Name) {
			continue
		}
		// Skip records without embeddings
		if len(c.Embedding) == 0 {
			continue
		}

		score := CosineSimilarity(query, c.Embedding)
		if score >= minSimilarity {
			hits = append(hits, core.SearchResult{Name: c.Name, Score: score})
		}
	}

	// Sort by similarity descending
	slices.SortFunc(hits, func(a, b core.SearchResult) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}
