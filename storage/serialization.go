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


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/cardvec/core"
)

// VectorEntry is the value stored for each model in an index.
type VectorEntry struct {
	// Position is the model's index in production order.
	Position int

	// Digest fingerprints the card text the vector was computed from.
	Digest uint64

	Embedding []float32
}

// Result converts the entry back into an embedding result for name.
func (e *VectorEntry) Result(name string) core.EmbeddingResult {
	return core.EmbeddingResult{Name: name, Embedding: e.Embedding, Digest: e.Digest}
}

// Layout: varint position, raw 8-byte digest, varint length, raw float32s.

// MarshalVectorEntry serializes a VectorEntry to bytes.
func MarshalVectorEntry(entry *VectorEntry) []byte {
	size := varint.Int.Size(entry.Position) +
		raw.Uint64.Size(entry.Digest) +
		varint.Int.Size(len(entry.Embedding)) +
		len(entry.Embedding)*raw.Float32.Size(0)

	buf := make([]byte, size)
	n := varint.Int.Marshal(entry.Position, buf)
	n += raw.Uint64.Marshal(entry.Digest, buf[n:])
	n += varint.Int.Marshal(len(entry.Embedding), buf[n:])
	for _, v := range entry.Embedding {
		n += raw.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalVectorEntry deserializes a VectorEntry from bytes.
func UnmarshalVectorEntry(data []byte) (*VectorEntry, error) {
	position, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: position: %w", ErrSerializationFailed, err)
	}
	offset := n

	digest, n, err := raw.Uint64.Unmarshal(data[offset:])
	if err != nil {
		return nil, fmt.Errorf("%w: digest: %w", ErrSerializationFailed, err)
	}
	offset += n

	length, n, err := varint.Int.Unmarshal(data[offset:])
	if err != nil {
		return nil, fmt.Errorf("%w: length: %w", ErrSerializationFailed, err)
	}
	offset += n

	elemSize := raw.Float32.Size(0)
	if length < 0 || length > (len(data)-offset)/elemSize {
		return nil, fmt.Errorf("%w: %d floats declared, %d bytes left", ErrTruncatedData, length, len(data)-offset)
	}

	embedding := make([]float32, length)
	for i := range embedding {
		embedding[i], n, err = raw.Float32.Unmarshal(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("%w: embedding[%d]: %w", ErrSerializationFailed, i, err)
		}
		offset += n
	}

	return &VectorEntry{
		Position:  position,
		Digest:    digest,
		Embedding: embedding,
	}, nil
}
