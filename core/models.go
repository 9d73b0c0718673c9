package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// Record is one named model entry extracted from the catalog source.
// All fields except Name are optional and may be empty.
type Record struct {
	Name     string
	Purpose  string
	UseCase  string
	Category string
	Industry string
}

// CardItem pairs a record name with the card text built from it.
// Card items only live between text building and embedding.
type CardItem struct {
	Name string
	Text string
}

// EmbeddingResult is the vector the embedding service returned for a record's card text.
// Digest is the fingerprint of that card text; it is not part of the lookup file.
type EmbeddingResult struct {
	Name      string    `json:"name"`
	Embedding []float32 `json:"embedding"`
	Digest    uint64    `json:"-"`
}

// SearchResult is a model name ranked by vector similarity to a query model.
type SearchResult struct {
	Name  string
	Score float32
}

// Digest returns a 64-bit BLAKE2b fingerprint of text.
// Identical card texts always produce identical digests.
func Digest(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Names returns the names of the given results in order.
func Names(results []EmbeddingResult) []string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Name
	}
	return names
}
