// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/cardvec/core"
	"github.com/poiesic/cardvec/search"
	"github.com/poiesic/cardvec/storage"
)

// Index implements storage.Index for BadgerDB.
//
// Each WriteResults call stores its vectors under a fresh generation and then
// points the current-generation key at it, so readers never observe a mix of
// two runs. The previous generation is dropped afterwards.
type Index struct {
	backend     *Backend
	genSeq      *badger.Sequence
	ownsBackend bool
	lastChanges Changes
	mu          sync.Mutex
}

// Changes compares a write with the generation it replaced, matching cards
// by name and their text by digest.
type Changes struct {
	Added     int
	Changed   int
	Unchanged int
	Removed   int
}

func diffDigests(previous map[string]uint64, results []core.EmbeddingResult) Changes {
	var c Changes
	seen := make(map[string]struct{}, len(results))
	for _, result := range results {
		seen[result.Name] = struct{}{}
		digest, ok := previous[result.Name]
		switch {
		case !ok:
			c.Added++
		case digest != result.Digest:
			c.Changed++
		default:
			c.Unchanged++
		}
	}
	for name := range previous {
		if _, ok := seen[name]; !ok {
			c.Removed++
		}
	}
	return c
}

var _ storage.Index = (*Index)(nil)

func newIndex(backend *Backend, ownsBackend bool) (*Index, error) {
	genSeq, err := backend.GetSequence(vectorGenerationSeq)
	if err != nil {
		return nil, err
	}

	return &Index{
		backend:     backend,
		genSeq:      genSeq,
		ownsBackend: ownsBackend,
	}, nil
}

// NewIndex opens (or creates) an index in the directory at path.
// Closing the index closes the underlying database.
func NewIndex(path string) (storage.Index, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}

	idx, err := newIndex(backend, true)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return idx, nil
}

// NewIndexWithBackend creates an index on an existing backend.
// The caller remains responsible for closing the backend after the index.
func NewIndexWithBackend(backend *Backend) (storage.Index, error) {
	return newIndex(backend, false)
}

// Close releases the generation sequence and, if the index opened the
// database itself, closes it.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.backend.IsClosed() {
		return nil
	}

	err := idx.genSeq.Release()
	if idx.ownsBackend {
		err = errors.Join(err, idx.backend.Close())
	}
	return err
}

// WriteResults replaces the indexed vectors with results.
func (idx *Index) WriteResults(ctx context.Context, results []core.EmbeddingResult) error {
	if err := core.ValidateResults(results); err != nil {
		return err
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	previous, err := idx.currentGeneration()
	if err != nil {
		return err
	}
	digests := make(map[string]uint64)
	err = idx.forEachEntry(ctx, func(name string, entry *storage.VectorEntry) error {
		digests[name] = entry.Digest
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to read current generation: %w", err)
	}
	generation, err := idx.nextGeneration()
	if err != nil {
		return err
	}

	wb := idx.backend.NewWriteBatch()
	for i, result := range results {
		if err := ctx.Err(); err != nil {
			wb.Cancel()
			idx.discardGeneration(generation)
			return err
		}

		entry := &storage.VectorEntry{
			Position:  i,
			Digest:    result.Digest,
			Embedding: result.Embedding,
		}
		if err := wb.Set(makeVectorKey(generation, result.Name), storage.MarshalVectorEntry(entry)); err != nil {
			wb.Cancel()
			idx.discardGeneration(generation)
			return fmt.Errorf("failed to stage %q: %w", result.Name, err)
		}
	}
	if err := wb.Flush(); err != nil {
		idx.discardGeneration(generation)
		return fmt.Errorf("failed to flush vectors: %w", err)
	}

	err = idx.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(vectorGenerationKey), encodeGeneration(generation)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		idx.discardGeneration(generation)
		return fmt.Errorf("failed to publish generation %d: %w", generation, err)
	}

	if previous != 0 {
		if err := idx.backend.DropPrefix(makeVectorPrefix(previous)); err != nil {
			// The new generation is already live; stale keys are only wasted space.
			idx.backend.logger.Warn("failed to drop previous generation", "generation", previous, "err", err)
		}
	}

	idx.lastChanges = diffDigests(digests, results)
	idx.backend.logger.Info("index replaced",
		"generation", generation,
		"items", len(results),
		"added", idx.lastChanges.Added,
		"changed", idx.lastChanges.Changed,
		"unchanged", idx.lastChanges.Unchanged,
		"removed", idx.lastChanges.Removed)
	return nil
}

// ReadResults returns the current generation's results in production order.
func (idx *Index) ReadResults(ctx context.Context) ([]core.EmbeddingResult, error) {
	type positioned struct {
		position int
		result   core.EmbeddingResult
	}

	var entries []positioned
	err := idx.forEachEntry(ctx, func(name string, entry *storage.VectorEntry) error {
		entries = append(entries, positioned{position: entry.Position, result: entry.Result(name)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, func(a, b positioned) int {
		return a.position - b.position
	})

	results := make([]core.EmbeddingResult, len(entries))
	for i, e := range entries {
		results[i] = e.result
	}
	return results, nil
}

// Lookup returns the stored entry for name.
func (idx *Index) Lookup(ctx context.Context, name string) (*storage.VectorEntry, error) {
	if idx.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	generation, err := idx.currentGeneration()
	if err != nil {
		return nil, err
	}
	if generation == 0 {
		return nil, fmt.Errorf("%w: %s", storage.ErrNotFound, name)
	}

	var entry *storage.VectorEntry
	err = idx.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(generation, name))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", storage.ErrNotFound, name)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			entry, err = storage.UnmarshalVectorEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// FindSimilar scores every indexed vector against vector by cosine similarity.
func (idx *Index) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int, exclude ...string) ([]core.SearchResult, error) {
	var candidates []core.EmbeddingResult
	err := idx.forEachEntry(ctx, func(name string, entry *storage.VectorEntry) error {
		candidates = append(candidates, entry.Result(name))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return search.Rank(vector, candidates, minSimilarity, limit, exclude...), nil
}

// forEachEntry calls fn for every vector in the current generation, in key order.
func (idx *Index) forEachEntry(ctx context.Context, fn func(name string, entry *storage.VectorEntry) error) error {
	if idx.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	generation, err := idx.currentGeneration()
	if err != nil {
		return err
	}
	if generation == 0 {
		return nil
	}

	prefix := makeVectorPrefix(generation)
	return idx.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			item := iter.Item()
			name, err := nameFromVectorKey(item.Key(), generation)
			if err != nil {
				return err
			}

			var entry *storage.VectorEntry
			err = item.Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalVectorEntry(val)
				return err
			})
			if err != nil {
				return fmt.Errorf("failed to decode %q: %w", name, err)
			}

			if err := fn(name, entry); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// currentGeneration returns the live generation, or 0 if nothing was written yet.
func (idx *Index) currentGeneration() (uint64, error) {
	var generation uint64
	err := idx.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(vectorGenerationKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var err error
			generation, err = decodeGeneration(val)
			return err
		})
	}, false)
	return generation, err
}

func (idx *Index) nextGeneration() (uint64, error) {
	generation, err := idx.genSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if generation == 0 {
		generation, err = idx.genSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return generation, nil
}

// discardGeneration removes keys staged for a generation that never went live.
func (idx *Index) discardGeneration(generation uint64) {
	if err := idx.backend.DropPrefix(makeVectorPrefix(generation)); err != nil {
		idx.backend.logger.Warn("failed to discard unpublished generation", "generation", generation, "err", err)
	}
}
