// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// Vectors are stored as a little-endian uint32 dimension count followed
// by that many float64 bit patterns. The encoding carries its own length
// so a decoded vector can be checked against the loading node's declared
// length.

func encodeVector(v vector.Vector) []byte {
	buf := make([]byte, 4+8*len(v))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(len(v)))
	for i, x := range v {
		binary.LittleEndian.PutUint64(buf[4+8*i:], math.Float64bits(x))
	}
	return buf
}

func decodeVector(data []byte) (vector.Vector, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("vector payload too short: %d bytes", len(data))
	}
	dim := int(binary.LittleEndian.Uint32(data[0:4]))
	if len(data) != 4+8*dim {
		return nil, fmt.Errorf("vector payload length %d does not match dimension %d", len(data), dim)
	}
	out := make(vector.Vector, dim)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[4+8*i:]))
	}
	return out, nil
}
