package tensor

import (
	"fmt"
	"strings"
)

// UnknownDim marks a dimension whose extent is not yet known.
const UnknownDim int64 = -1

// PartialShape represents the dimensions of a tensor, some of which may be
// unknown. A dimension of UnknownDim (-1) is unspecified; all other
// dimensions must be >= 0. An empty shape is a scalar.
type PartialShape []int64

// Rank returns the number of dimensions.
func (s PartialShape) Rank() int {
	return len(s)
}

// FullyDefined reports whether every dimension is known.
func (s PartialShape) FullyDefined() bool {
	for _, dim := range s {
		if dim < 0 {
			return false
		}
	}
	return true
}

// NumElements returns the total number of elements, or -1 if the shape is
// not fully defined.
func (s PartialShape) NumElements() int64 {
	n := int64(1)
	for _, dim := range s {
		if dim < 0 {
			return -1
		}
		n *= dim
	}
	return n
}

// Validate checks that every dimension is either UnknownDim or >= 0.
func (s PartialShape) Validate() error {
	for i, dim := range s {
		if dim < UnknownDim {
			return fmt.Errorf("invalid dimension at index %d: %d", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal. Unknown dimensions only match
// unknown dimensions.
func (s PartialShape) Equal(other PartialShape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s PartialShape) Clone() PartialShape {
	clone := make(PartialShape, len(s))
	copy(clone, s)
	return clone
}

// String formats the shape as "[2,?,3]" with "?" for unknown dimensions.
func (s PartialShape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		if dim < 0 {
			parts[i] = "?"
		} else {
			parts[i] = fmt.Sprintf("%d", dim)
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}
