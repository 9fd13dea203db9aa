package database

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EmbeddingDim is the system-wide face embedding dimension. Every stored
// vector is validated against it on read; a mismatch is rejected before it
// can reach distance computation.
const EmbeddingDim = 128

// ValidateEmbedding checks that a vector has the expected dimension and
// contains no NaN or Inf components.
func ValidateEmbedding(v []float32, dim int) error {
	if len(v) != dim {
		return fmt.Errorf("embedding has %d dimensions, expected %d", len(v), dim)
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return fmt.Errorf("embedding component %d is not finite", i)
		}
	}
	return nil
}

// EncodeVector serializes an embedding as little-endian float32 bytes.
func EncodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

// DecodeVector deserializes an embedding and validates its dimension.
func DecodeVector(data []byte, dim int) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("embedding blob is %d bytes, not a multiple of 4", len(data))
	}
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	if err := ValidateEmbedding(v, dim); err != nil {
		return nil, err
	}
	return v, nil
}
