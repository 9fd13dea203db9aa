package database

import (
	"math"
	"testing"
)

func TestVectorRoundtrip(t *testing.T) {
	v := []float32{0.1, -0.5, 3.25, 0}

	decoded, err := DecodeVector(EncodeVector(v), 4)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(decoded) != len(v) {
		t.Fatalf("expected %d components, got %d", len(v), len(decoded))
	}
	for i := range v {
		if decoded[i] != v[i] {
			t.Errorf("component %d: expected %f, got %f", i, v[i], decoded[i])
		}
	}
}

func TestDecodeVector_WrongDimension(t *testing.T) {
	data := EncodeVector([]float32{1, 2, 3})

	if _, err := DecodeVector(data, 4); err == nil {
		t.Error("expected error for dimension mismatch")
	}
}

func TestDecodeVector_TruncatedBlob(t *testing.T) {
	data := EncodeVector([]float32{1, 2, 3})

	if _, err := DecodeVector(data[:len(data)-2], 3); err == nil {
		t.Error("expected error for truncated blob")
	}
}

func TestValidateEmbedding(t *testing.T) {
	if err := ValidateEmbedding([]float32{1, 2}, 2); err != nil {
		t.Errorf("unexpected error for valid embedding: %v", err)
	}

	if err := ValidateEmbedding([]float32{1, 2}, 3); err == nil {
		t.Error("expected error for wrong dimension")
	}

	if err := ValidateEmbedding([]float32{1, float32(math.NaN())}, 2); err == nil {
		t.Error("expected error for NaN component")
	}

	if err := ValidateEmbedding([]float32{1, float32(math.Inf(1))}, 2); err == nil {
		t.Error("expected error for Inf component")
	}
}
