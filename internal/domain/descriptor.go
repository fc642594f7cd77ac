package domain

import (
	"math"
)

// DescriptorDim is the length of every stored face descriptor. The embedding
// model in use produces 128-dimensional vectors; descriptors of any other
// length are rejected at the persistence boundary.
const DescriptorDim = 128

// Descriptor is a fixed-length numeric face embedding. Immutable once
// produced; only comparable to descriptors of the same length.
type Descriptor []float64

// ParseDescriptor validates raw values as a stored descriptor. It enforces
// the fixed dimension and rejects non-finite components, so malformed
// payloads never reach the matcher.
func ParseDescriptor(values []float64) (Descriptor, error) {
	if len(values) != DescriptorDim {
		return nil, ErrDimensionMismatch
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrDimensionMismatch
		}
	}

	d := make(Descriptor, DescriptorDim)
	copy(d, values)
	return d, nil
}

// Valid reports whether the descriptor is non-empty and all components are
// finite. Unlike ParseDescriptor it does not pin the length, so probes from
// providers with other models can still be validated structurally.
func (d Descriptor) Valid() bool {
	if len(d) == 0 {
		return false
	}
	for _, v := range d {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
