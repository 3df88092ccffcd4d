package domain

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// Vector is an embedding vector. Dimensionality is fixed by the embedding
// model; vectors of different lengths never mix. Operations return fresh
// slices, the receiver is never modified.
type Vector []float64

// IsZero reports whether the vector is empty or all zeroes.
func (v Vector) IsZero() bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// EncodeBase64 serializes the vector as a base64 string of big-endian
// 8-byte floats, the transport format shared with the embedding service
// and the search engine's vector-scoring script.
func (v Vector) EncodeBase64() string {
	buf := make([]byte, 8*len(v))
	for i, x := range v {
		binary.BigEndian.PutUint64(buf[8*i:], math.Float64bits(x))
	}
	return base64.StdEncoding.EncodeToString(buf)
}

// DecodeVectorBase64 parses a base64 big-endian float64 buffer into a Vector.
func DecodeVectorBase64(s string) (Vector, error) {
	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode vector: %w", err)
	}
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("decode vector: buffer length %d is not a multiple of 8", len(buf))
	}
	v := make(Vector, len(buf)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[8*i:]))
	}
	return v, nil
}

// Blend moves the vector towards (positive) or away from (negative) the
// target by the learning rate alpha, clamped to [0, 1]. A zero receiver is
// hard-set to the target: the first signal is taken as-is, not blended.
func (v Vector) Blend(target Vector, alpha float64, positive bool) (Vector, error) {
	if v.IsZero() {
		out := make(Vector, len(target))
		copy(out, target)
		return out, nil
	}
	if len(v) != len(target) {
		return nil, fmt.Errorf("%w: %d vs %d", ErrVectorDimMismatch, len(v), len(target))
	}
	alpha = math.Max(0, math.Min(1, alpha))
	out := make(Vector, len(v))
	for i := range v {
		step := alpha * (target[i] - v[i])
		if positive {
			out[i] = v[i] + step
		} else {
			out[i] = v[i] - step
		}
	}
	return out, nil
}

// Equal reports whether both vectors have the same length and every
// component differs by at most tol.
func (v Vector) Equal(other Vector, tol float64) bool {
	if len(v) != len(other) {
		return false
	}
	for i := range v {
		if math.Abs(v[i]-other[i]) > tol {
			return false
		}
	}
	return true
}
