package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// MatrixRequestKey is the minimal, canonicalizable shape of a matrix query,
// independent of the engine package so this package stays free of an
// import cycle. Callers project engine.Request into this shape before
// hashing.
type MatrixRequestKey struct {
	SourceEdges       []uint64
	TargetEdges       []uint64
	Mode              string
	MaxMatrixDistance float64
	HasTime           bool
	Invariant         bool
}

// MatrixHash computes a deterministic cache key for a matrix query: sources
// and targets are flattened to their candidate edge IDs and sorted, so two
// requests naming the same locations in different orders or with a
// different candidate ordering still hash identically.
func MatrixHash(key MatrixRequestKey) string {
	data := matrixKeyToCanonical(key)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func matrixKeyToCanonical(key MatrixRequestKey) []byte {
	sources := append([]uint64(nil), key.SourceEdges...)
	targets := append([]uint64(nil), key.TargetEdges...)
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	var result []byte
	result = append(result, []byte(fmt.Sprintf("mode:%s;maxdist:%.6f;hastime:%t;invariant:%t;",
		key.Mode, key.MaxMatrixDistance, key.HasTime, key.Invariant))...)

	result = append(result, []byte("s:")...)
	for _, id := range sources {
		result = append(result, []byte(fmt.Sprintf("%d,", id))...)
	}
	result = append(result, []byte(";t:")...)
	for _, id := range targets {
		result = append(result, []byte(fmt.Sprintf("%d,", id))...)
	}
	result = append(result, ';')

	return result
}

// BuildMatrixKey builds the final cache key for a hashed matrix request.
func BuildMatrixKey(requestHash string) string {
	return fmt.Sprintf("matrix:%s", requestHash)
}

// QuickHash is a generic sha256 digest for arbitrary data.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash is a 16-character prefix of QuickHash.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
