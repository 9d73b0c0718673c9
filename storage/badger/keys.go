package badger

import (
	"encoding/binary"
	"fmt"
)

// Key prefixes for different data types
const (
	vectorPrefix        = "vec"
	vectorGenerationKey = "vecgen:current"
	vectorGenerationSeq = "vecgen:seq"
)

// makeVectorPrefix generates the key prefix shared by all vectors of one generation.
// Format: prefix:generation:
func makeVectorPrefix(generation uint64) []byte {
	prefix := vectorPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8 + 1 // 8 bytes for generation + trailing separator
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], generation)
	offset += 8
	buf[offset] = ':'
	return buf
}

// makeVectorKey generates a key for a model's vector within a generation.
// Format: prefix:generation:name
func makeVectorKey(generation uint64, name string) []byte {
	prefix := makeVectorPrefix(generation)
	buf := make([]byte, len(prefix)+len(name))
	offset := copy(buf, prefix)
	copy(buf[offset:], name)
	return buf
}

// nameFromVectorKey extracts the model name from a vector key.
func nameFromVectorKey(key []byte, generation uint64) (string, error) {
	prefix := makeVectorPrefix(generation)
	if len(key) <= len(prefix) {
		return "", fmt.Errorf("vector key too short: %d bytes", len(key))
	}
	return string(key[len(prefix):]), nil
}

// encodeGeneration serializes a generation number for the pointer key.
func encodeGeneration(generation uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, generation)
	return buf
}

// decodeGeneration deserializes a generation number from the pointer key.
func decodeGeneration(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid generation value: %d bytes", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
