package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash computes the SHA-256 hash of the input data as a 64-character hex
// string. Used both for cache keys and for the content hashes surfaced in
// API responses.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashParts hashes the JSON encoding of the given values. Callers must pass
// values with deterministic encodings (structs and slices, not maps with
// mixed key order).
func HashParts(parts ...any) string {
	data, _ := json.Marshal(parts)
	return Hash(data)
}
