// Package embed turns card texts into embedding vectors in fixed-size batches.
//
// This package partitions the ordered card items into consecutive batches,
// submits each batch to an ai.Embedder, checks that every batch comes back
// with one vector per text, pauses between batches, and reports progress.
// Batches are dispatched one at a time; a failed batch aborts the run and no
// results are returned.
package embed
