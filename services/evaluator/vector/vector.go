// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package vector defines the fixed-length embedding value produced by the
// evaluation engine.
package vector

import (
	"fmt"
	"math"
)

// Vector is a fixed-length ordered sequence of float64 values. The length is
// dictated by the node that produced it and never changes after creation.
type Vector []float64

// Zeros returns a zero vector of the given dimension.
func Zeros(dim int) Vector {
	return make(Vector, dim)
}

// Dim returns the number of dimensions.
func (v Vector) Dim() int {
	return len(v)
}

// Clone returns an independent copy.
func (v Vector) Clone() Vector {
	out := make(Vector, len(v))
	copy(out, v)
	return out
}

// CheckDim verifies the vector has the expected dimension.
//
// Outputs:
//
//	error - Non-nil if the dimension does not match.
func (v Vector) CheckDim(dim int) error {
	if len(v) != dim {
		return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(v), dim)
	}
	return nil
}

// Normalize scales the vector to unit L2 norm in place and returns it.
// A zero vector is returned unchanged.
func (v Vector) Normalize() Vector {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	for i := range v {
		v[i] /= norm
	}
	return v
}

// Float32 converts the vector to float32 form for index clients that
// require it.
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
