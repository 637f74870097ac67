package cache

import (
	"testing"
)

func TestMatrixHash(t *testing.T) {
	t.Run("same request produces same hash", func(t *testing.T) {
		k := MatrixRequestKey{
			SourceEdges:       []uint64{1, 2},
			TargetEdges:       []uint64{4},
			Mode:              "auto",
			MaxMatrixDistance: 100000,
		}

		hash1 := MatrixHash(k)
		hash2 := MatrixHash(k)

		if hash1 != hash2 {
			t.Errorf("same request should produce same hash: %v != %v", hash1, hash2)
		}
	})

	t.Run("different requests produce different hashes", func(t *testing.T) {
		k1 := MatrixRequestKey{SourceEdges: []uint64{1}, TargetEdges: []uint64{2}, Mode: "auto"}
		k2 := MatrixRequestKey{SourceEdges: []uint64{1}, TargetEdges: []uint64{2}, Mode: "bicycle"}

		hash1 := MatrixHash(k1)
		hash2 := MatrixHash(k2)

		if hash1 == hash2 {
			t.Error("different requests should produce different hashes")
		}
	})

	t.Run("edge order does not affect hash", func(t *testing.T) {
		k1 := MatrixRequestKey{SourceEdges: []uint64{1, 2, 3}, TargetEdges: []uint64{9}, Mode: "auto"}
		k2 := MatrixRequestKey{SourceEdges: []uint64{3, 1, 2}, TargetEdges: []uint64{9}, Mode: "auto"}

		hash1 := MatrixHash(k1)
		hash2 := MatrixHash(k2)

		if hash1 != hash2 {
			t.Error("source edge order should not affect hash")
		}
	})

	t.Run("has_time and invariant flags affect hash", func(t *testing.T) {
		base := MatrixRequestKey{SourceEdges: []uint64{1}, TargetEdges: []uint64{2}, Mode: "auto"}
		withTime := base
		withTime.HasTime = true

		if MatrixHash(base) == MatrixHash(withTime) {
			t.Error("has_time flag should affect hash")
		}
	})
}

func TestBuildMatrixKey(t *testing.T) {
	key := BuildMatrixKey("abc123")
	expected := "matrix:abc123"
	if key != expected {
		t.Errorf("BuildMatrixKey() = %v, want %v", key, expected)
	}
}

func TestQuickHash(t *testing.T) {
	data := []byte("test data")
	hash := QuickHash(data)

	if len(hash) != 64 { // SHA256 hex = 64 chars
		t.Errorf("QuickHash length = %d, want 64", len(hash))
	}

	// Same data should produce same hash
	hash2 := QuickHash(data)
	if hash != hash2 {
		t.Error("same data should produce same hash")
	}
}

func TestShortHash(t *testing.T) {
	data := []byte("test data")
	hash := ShortHash(data)

	if len(hash) != 16 {
		t.Errorf("ShortHash length = %d, want 16", len(hash))
	}
}
